package agent

import (
	"encoding/json"
	"io"

	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// WriteJSON writes the reports as an indented JSON array.
func WriteJSON(w io.Writer, reports []*model.TaskReport) error {
	if reports == nil {
		reports = []*model.TaskReport{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(reports); err != nil {
		return helper.NewError("write reports", err)
	}
	return nil
}
