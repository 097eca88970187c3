package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue is a data-quality problem found in an accepted document. Issues do
// not reject the document; they are shown next to the affected section.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// resultsValidate checks the field-level invariants of TestResults.
var resultsValidate *validator.Validate

func init() {
	resultsValidate = validator.New()
	resultsValidate.RegisterTagNameFunc(jsonFieldName)
	_ = resultsValidate.RegisterValidation("connstatus", validateConnStatus)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func validateConnStatus(fl validator.FieldLevel) bool {
	return ConnectivityStatus(fl.Field().String()).Known()
}

// Check returns the invariant violations in r: ICE candidate protocol, type
// and priority, connectivity statuses outside the known set, MOS outside
// 1.0-5.0, and sample arrays that are empty although no error was recorded.
func Check(r *TestResults) []Issue {
	var issues []Issue

	err := resultsValidate.Struct(r)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			issues = append(issues, Issue{Field: fieldPath(fe), Message: describe(fe)})
		}
	} else if err != nil {
		issues = append(issues, Issue{Field: "document", Message: err.Error()})
	}

	if in := r.AudioTestResults.InputTest; in != nil && len(in.Values) == 0 && len(in.Errors) == 0 {
		issues = append(issues, Issue{
			Field:   "audioTestResults.inputTest.values",
			Message: "no samples recorded and no errors reported",
		})
	}
	if b := r.BitrateTestResults; b != nil && len(b.Values) == 0 && len(b.Errors) == 0 {
		issues = append(issues, Issue{
			Field:   "bitrateTestResults.values",
			Message: "no samples recorded and no errors reported",
		})
	}
	return issues
}

// fieldPath drops the leading struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%v is not one of %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%v is below %s", fe.Value(), fe.Param())
	case "lte":
		return fmt.Sprintf("%v is above %s", fe.Value(), fe.Param())
	case "connstatus":
		return fmt.Sprintf("unknown connectivity status %q", fe.Value())
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}
