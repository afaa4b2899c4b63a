package launchpad

import (
	"strings"

	"curveScope/internal/model"
)

// Tracked module names under the contract address.
const (
	ModuleTokenFactory      = "token_factory"
	ModuleBondingCurvePool  = "bonding_curve_pool"
	ModuleGraduationHandler = "graduation_handler"
	ModuleRouter            = "router"

	buyTokensFunction = "buy_tokens"
)

// Classifier decides whether a transaction touches the tracked modules.
type Classifier struct {
	contract  string
	modules   []string
	purchases map[string]struct{}
}

// NewClassifier builds a classifier for an already-normalized contract address.
func NewClassifier(contract string) *Classifier {
	contract = strings.ToLower(contract)
	names := []string{ModuleTokenFactory, ModuleBondingCurvePool, ModuleGraduationHandler, ModuleRouter}
	modules := make([]string, 0, len(names))
	for _, name := range names {
		modules = append(modules, contract+"::"+name)
	}
	return &Classifier{
		contract: contract,
		modules:  modules,
		purchases: map[string]struct{}{
			contract + "::" + ModuleBondingCurvePool + "::" + buyTokensFunction: {},
			contract + "::" + ModuleRouter + "::" + buyTokensFunction:           {},
		},
	}
}

// IsRelevant reports whether the entry function belongs to a tracked module
// or any emitted event type mentions the contract address.
func (c *Classifier) IsRelevant(tx model.Transaction) bool {
	if fn := strings.ToLower(tx.FunctionName()); fn != "" {
		for _, module := range c.modules {
			if strings.HasPrefix(fn, module) {
				return true
			}
		}
	}
	for _, event := range tx.Events {
		if strings.Contains(strings.ToLower(event.Type), c.contract) {
			return true
		}
	}
	return false
}

// IsPurchaseCall reports whether the entry function is a buy_tokens call.
func (c *Classifier) IsPurchaseCall(tx model.Transaction) bool {
	_, ok := c.purchases[strings.ToLower(tx.FunctionName())]
	return ok
}
