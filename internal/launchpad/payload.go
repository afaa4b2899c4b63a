package launchpad

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// addressRef accepts either a bare address or an object wrapper {"inner": "0x.."}.
type addressRef string

func (a *addressRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = addressRef(s)
		return nil
	}
	var wrapper struct {
		Inner string `json:"inner"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("object reference: %w", err)
	}
	*a = addressRef(wrapper.Inner)
	return nil
}

// optionalAmount accepts a bare string or an option wrapper {"vec": []}.
type optionalAmount struct {
	value *decimal.Decimal
}

func (o *optionalAmount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("option value: %w", err)
		}
		o.value = &d
		return nil
	}
	var wrapper struct {
		Vec []decimal.Decimal `json:"vec"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("option wrapper: %w", err)
	}
	if len(wrapper.Vec) > 0 {
		v := wrapper.Vec[0]
		o.value = &v
	}
	return nil
}

// amount is a required decimal field. A missing key leaves value nil, which
// fieldCheck reports instead of treating it as zero.
type amount struct {
	value *decimal.Decimal
}

func (a *amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	a.value = &d
	return nil
}

// fieldCheck collects missing required amounts for one event.
type fieldCheck struct {
	event   string
	missing []string
}

func (c *fieldCheck) amount(name string, a amount) decimal.Decimal {
	if a.value == nil {
		c.missing = append(c.missing, name)
		return decimal.Zero
	}
	return *a.value
}

func (c *fieldCheck) err() error {
	if len(c.missing) == 0 {
		return nil
	}
	return fmt.Errorf("decode %s: missing %s", c.event, strings.Join(c.missing, ", "))
}

// flexUint8 accepts a JSON number or a decimal string.
type flexUint8 uint8

func (f *flexUint8) UnmarshalJSON(data []byte) error {
	text := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	v, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return fmt.Errorf("u8: %w", err)
	}
	*f = flexUint8(v)
	return nil
}

type createFAPayload struct {
	CreatorAddr string         `json:"creator_addr"`
	FAObj       addressRef     `json:"fa_obj"`
	MaxSupply   optionalAmount `json:"max_supply"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Decimals    flexUint8      `json:"decimals"`
	IconURI     string         `json:"icon_uri"`
	ProjectURI  string         `json:"project_uri"`
	MintFee     amount         `json:"mint_fee_per_smallest_unit_of_fa"`
}

type mintFAPayload struct {
	FAObj         addressRef `json:"fa_obj"`
	Amount        amount     `json:"amount"`
	RecipientAddr string     `json:"recipient_addr"`
	TotalMintFee  amount     `json:"total_mint_fee"`
}

type burnFAPayload struct {
	FAObj      addressRef `json:"fa_obj"`
	Amount     amount     `json:"amount"`
	BurnerAddr string     `json:"burner_addr"`
}

type buyTokensPayload struct {
	Buyer       string     `json:"buyer"`
	FAObjAddr   addressRef `json:"fa_obj_addr"`
	AptAmount   amount     `json:"apt_amount"`
	TokenAmount amount     `json:"token_amount"`
	FeeAmount   amount     `json:"fee_amount"`
}

type sellTokensPayload struct {
	Seller      string     `json:"seller"`
	FAObjAddr   addressRef `json:"fa_obj_addr"`
	AptAmount   amount     `json:"apt_amount"`
	TokenAmount amount     `json:"token_amount"`
	FeeAmount   amount     `json:"fee_amount"`
}

type poolGraduatedPayload struct {
	FAObjAddr   addressRef     `json:"fa_obj_addr"`
	AptReserves optionalAmount `json:"apt_reserves"`
}

type transferPayload struct {
	Amount string `json:"amount"`
}
