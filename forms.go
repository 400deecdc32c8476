package folio

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/resource"
)

const mediaFormField = "media"

// editableFields lists the schema fields an operator sets directly. The
// media URL and kind are owned by the upload sub-routine.
func editableFields(s resource.Schema) []string {
	var names []string
	for _, f := range s.Fields {
		if m := s.Media; m != nil && (f.Name == m.Field || f.Name == m.KindField) {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// bindDraft copies the named fields from the request into the form's draft.
// Unchecked boxes and empty multi-selects arrive as absent values, so bool
// and set fields are always written; other absent fields keep their value.
func bindDraft(c echo.Context, form *resource.FormController, names []string) error {
	values, err := c.FormParams()
	if err != nil {
		return &resource.ValidationError{Reason: "could not read the form"}
	}
	schema := form.Schema()
	for _, name := range names {
		f, ok := schema.Field(name)
		if !ok {
			continue
		}
		var v any
		switch f.Kind {
		case resource.KindBool:
			v = values.Get(name)
		case resource.KindSet:
			v = strings.Join(values[name], ",")
		default:
			if _, present := values[name]; !present {
				continue
			}
			v = values.Get(name)
		}
		if err := form.SetField(name, v); err != nil {
			return err
		}
	}
	return nil
}

// bindMedia stages the uploaded file, if any, or clears the media when the
// operator ticked clear_media.
func bindMedia(c echo.Context, form *resource.FormController, maxSize int64) error {
	if form.Schema().Media == nil {
		return nil
	}
	if c.FormValue("clear_media") == "on" {
		return form.ClearMedia()
	}
	fh, err := c.FormFile(mediaFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil
		}
		return &resource.ValidationError{Field: mediaFormField, Reason: "could not read the uploaded file"}
	}
	if fh.Size == 0 {
		return nil
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	// One byte over the limit is enough for the uploader to reject it.
	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	_, err = form.StageMedia(&resource.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	})
	return err
}

// submitStatus maps a failed submit to the status of the re-rendered form.
func submitStatus(err error) int {
	var ue *resource.UploadError
	var ge *resource.GatewayError
	switch {
	case errors.Is(err, resource.ErrBusy):
		return http.StatusConflict
	case resource.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ue):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ge):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
