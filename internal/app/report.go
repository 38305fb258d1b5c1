package app

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/eventlog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// report is the final output of a run.
type report struct {
	Chain     string            `json:"chain"`
	Committed bool              `json:"committed"`
	Cart      *cart.Cart        `json:"cart"`
	Error     string            `json:"error,omitempty"`
	Events    []eventlog.Record `json:"events"`
}

func (a *App) writeReport(rep report) error {
	if a.config.OutputFormat == OutputJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.outW, string(data))
		return err
	}

	fmt.Fprintf(a.outW, "Chain %q\n", rep.Chain)
	for _, rec := range rep.Events {
		fmt.Fprintf(a.outW, "  %s\n", rec.Message)
	}
	if !rep.Committed {
		_, err := fmt.Fprintln(a.outW, "Result: unchanged")
		return err
	}
	_, err := fmt.Fprintf(a.outW, "Result: %s\n", rep.Cart.Summary())
	return err
}
