package folio

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/eringen/folio/resource"
)

func TestSubmitStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{resource.ErrBusy, http.StatusConflict},
		{&resource.ValidationError{Field: "title", Reason: "required"}, http.StatusUnprocessableEntity},
		{&resource.UploadError{Bucket: "blog", Name: "a.png", Err: errors.New("too large")}, http.StatusUnprocessableEntity},
		{fmt.Errorf("save: %w", &resource.GatewayError{Op: "insert", Table: "events", Err: errors.New("down")}), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := submitStatus(tt.err); got != tt.want {
			t.Errorf("submitStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestEditableFieldsSkipMedia(t *testing.T) {
	for _, name := range editableFields(resource.Projects) {
		if name == resource.Projects.Media.Field || name == resource.Projects.Media.KindField {
			t.Errorf("media field %q is editable", name)
		}
	}
	if len(editableFields(resource.Messages)) != len(resource.Messages.Fields) {
		t.Error("schema without media lost fields")
	}
}
