package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// HumanPrinter is implemented by results with a human-readable rendering
type HumanPrinter interface {
	PrintHuman(w io.Writer) error
}

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool

	// Out and ErrOut default to the process streams at call time
	Out    io.Writer
	ErrOut io.Writer
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out != nil {
		return f.Out
	}
	return os.Stdout
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.ErrOut != nil {
		return f.ErrOut
	}
	return os.Stderr
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	if f.Quiet {
		if idGetter, ok := data.(interface{ GetID() string }); ok {
			_, err := fmt.Fprintln(f.out(), idGetter.GetID())
			return err
		}
		return nil
	}

	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	if printer, ok := data.(HumanPrinter); ok {
		return printer.PrintHuman(f.out())
	}
	_, err := fmt.Fprintf(f.out(), "%+v\n", data)
	return err
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	fmt.Fprintf(f.errOut(), "Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.errOut(), "Suggestion: %s\n", suggestion)
	}
	return nil
}

// Fail reports err and returns it wrapped with its exit code
func (f *OutputFormatter) Fail(err error) error {
	if err == nil {
		return nil
	}
	exit, code := Classify(err)
	_ = f.ErrorWithSuggestion(code, err.Error(), suggestion(err))
	return &ExitError{Code: exit, Err: err}
}

// FailWithData reports err together with the partial result that explains
// it, such as the issue list of a definition that failed validation
func (f *OutputFormatter) FailWithData(data any, err error) error {
	if err == nil {
		return f.Success(data)
	}
	exit, code := Classify(err)
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": err.Error(),
		}
		if s := suggestion(err); s != "" {
			errData["suggestion"] = s
		}
		_ = json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"data":    data,
			"error":   errData,
		})
		return &ExitError{Code: exit, Err: err}
	}
	if printer, ok := data.(HumanPrinter); ok && !f.Quiet {
		_ = printer.PrintHuman(f.out())
	}
	_ = f.ErrorWithSuggestion(code, err.Error(), suggestion(err))
	return &ExitError{Code: exit, Err: err}
}
