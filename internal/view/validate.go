package view

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

type ValidateView interface {
	Render(result ValidateResult)
}

// ValidateResult is the outcome of validating one or more files.
type ValidateResult struct {
	Kind  string
	Files []FileResult
}

// FileResult holds the rendered diagnostics of one file.
type FileResult struct {
	File     string   `json:"file"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (f FileResult) Valid() bool {
	return len(f.Errors) == 0
}

func (r ValidateResult) HasErrors() bool {
	for _, f := range r.Files {
		if !f.Valid() {
			return true
		}
	}

	return false
}

var (
	errorLabel   = color.RGB(229, 50, 50).SprintFunc()
	warningLabel = color.RGB(229, 180, 50).SprintFunc()
	validLabel   = color.RGB(50, 108, 229).SprintFunc()
)

// Human view implementation.

type validateHumanView struct {
	*HumanView
}

func newValidateHumanView(hv *HumanView) *validateHumanView {
	return &validateHumanView{HumanView: hv}
}

func (v *validateHumanView) Render(result ValidateResult) {
	for _, f := range result.Files {
		for _, w := range f.Warnings {
			v.Println(warningLabel("Warning!"), f.File+":", w)
		}

		for _, e := range f.Errors {
			v.Println(errorLabel("Error!"), f.File+":", e)
		}
	}

	if len(result.Files) > 1 {
		tbl := table.New("File", "Errors", "Warnings", "Status").WithWriter(v.Writer)
		tbl.WithHeaderFormatter(color.New(color.FgGreen, color.Bold).SprintfFunc())

		for _, f := range result.Files {
			status := "valid"
			if !f.Valid() {
				status = "invalid"
			}

			tbl.AddRow(f.File, strconv.Itoa(len(f.Errors)), strconv.Itoa(len(f.Warnings)), status)
		}

		tbl.Print()
	}

	if !result.HasErrors() {
		v.Println(validLabel("Valid!"), "no errors found.")
	}
}

// JSON view implementation.

type validateJSONView struct {
	*JSONView
}

func newValidateJSONView(jv *JSONView) *validateJSONView {
	return &validateJSONView{JSONView: jv}
}

type validateJSONResult struct {
	Type      string       `json:"type"`
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Files     []FileResult `json:"files"`
}

func (v *validateJSONView) Render(result ValidateResult) {
	out := validateJSONResult{
		Type:      result.Kind,
		Status:    "success",
		Timestamp: time.Now(),
		Files:     result.Files,
	}

	if result.HasErrors() {
		out.Status = "error"
	}

	if data, err := json.Marshal(out); err == nil {
		v.Println(string(data))
	}
}

func NewValidateView(v Viewer) ValidateView {
	switch vt := v.(type) {
	case *HumanView:
		return newValidateHumanView(vt)
	case *JSONView:
		return newValidateJSONView(vt)
	default:
		panic("unknown view type")
	}
}
