package indexer

import (
	"curveScope/internal/launchpad"
	"curveScope/internal/model"
)

// purchaseCallIndex marks decode failures of the entry-function arguments.
const purchaseCallIndex = -1

// Pipeline classifies a transaction and decodes its contract events.
type Pipeline struct {
	classifier *launchpad.Classifier
	decoder    *launchpad.Decoder
}

// Decoded is the classifier and decoder output for one transaction.
type Decoded struct {
	Relevant bool
	Events   []launchpad.DomainEvent
	Failures []model.DecodeError
}

func NewPipeline(contract string) (*Pipeline, error) {
	decoder, err := launchpad.NewDecoder(launchpad.DecoderConfig{Contract: contract})
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		classifier: launchpad.NewClassifier(decoder.Contract()),
		decoder:    decoder,
	}, nil
}

// Contract returns the normalized contract address.
func (p *Pipeline) Contract() string {
	return p.decoder.Contract()
}

// Decode runs events first, in emission order, then the buy_tokens call path.
// A failure on one event never hides its siblings.
func (p *Pipeline) Decode(tx model.Transaction) Decoded {
	out := Decoded{Relevant: p.classifier.IsRelevant(tx)}
	if !out.Relevant {
		return out
	}

	for i, event := range tx.Events {
		if !p.decoder.CanDecode(event.Type) {
			continue
		}
		decoded, err := p.decoder.Decode(event)
		if err != nil {
			out.Failures = append(out.Failures, decodeFailure(tx, i, event.Type, err))
			continue
		}
		out.Events = append(out.Events, decoded)
	}

	// aborted transactions moved no funds
	if tx.Success && p.classifier.IsPurchaseCall(tx) {
		call, err := p.decoder.DecodePurchaseCall(tx)
		if err != nil {
			out.Failures = append(out.Failures, decodeFailure(tx, purchaseCallIndex, tx.FunctionName(), err))
		} else {
			out.Events = append(out.Events, call)
		}
	}
	return out
}

func decodeFailure(tx model.Transaction, index int, eventType string, err error) model.DecodeError {
	return model.DecodeError{
		Version:    tx.Version,
		TxHash:     tx.Hash,
		EventIndex: index,
		EventType:  eventType,
		Error:      err.Error(),
	}
}
