package report

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	photosField     = "gambar"
	invitationField = "surat_jemputan"

	notBlankTag  = "notblank"
	notBlankText = "this field is required"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	photoTypes      = []string{"image/jpeg", "image/png"}
	invitationTypes = []string{"application/pdf", "image/jpeg", "image/png"}
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names so errors name the form fields.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterTranslation(
		notBlankTag, translator,
		func(t ut.Translator) error { return t.Add(notBlankTag, notBlankText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(notBlankTag, fe.Field())
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// Validate runs every check on a submission and reports all violations at once.
func Validate(form Form) error {
	return Merge(
		ValidateFields(form.Fields),
		ValidatePhotoCount(len(form.Photos)),
		ValidateAttachments(form.Photos, form.Invitation),
	)
}

// ValidateFields checks that every required text field is non-blank.
// All fields are checked; one FieldError is reported per violation.
func ValidateFields(f Fields) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
	}
	return NewValidationError(errInvalidReport, flds...)
}

// ValidatePhotoCount accepts 2 to 4 photos.
func ValidatePhotoCount(n int) error {
	switch {
	case n < MinPhotos:
		return NewValidationError(errInvalidReport, FieldError{
			Field: photosField,
			Error: fmt.Sprintf("at least %d photos are required, add %d more", MinPhotos, MinPhotos-n),
		})
	case n > MaxPhotos:
		return NewValidationError(errInvalidReport, FieldError{
			Field: photosField,
			Error: fmt.Sprintf("at most %d photos are allowed, remove %d", MaxPhotos, n-MaxPhotos),
		})
	}
	return nil
}

// ValidateInvitationCount accepts at most one invitation letter.
func ValidateInvitationCount(n int) error {
	if n > 1 {
		return NewValidationError(errInvalidReport, FieldError{
			Field: invitationField,
			Error: fmt.Sprintf("only one invitation letter can be attached, remove %d", n-1),
		})
	}
	return nil
}

// ValidateAttachments checks file contents: photos must be JPEG or PNG, the
// invitation may also be a PDF. Types are sniffed from the data.
func ValidateAttachments(photos []Attachment, invitation *Attachment) error {
	var flds []FieldError
	for i, p := range photos {
		if msg := checkAttachment(p, photoTypes, "a JPEG or PNG image"); msg != "" {
			flds = append(flds, FieldError{
				Field: photosField,
				Error: fmt.Sprintf("photo %d (%s) %s", i+1, p.Filename, msg),
			})
		}
	}
	if invitation != nil {
		if msg := checkAttachment(*invitation, invitationTypes, "a PDF, JPEG or PNG file"); msg != "" {
			flds = append(flds, FieldError{
				Field: invitationField,
				Error: fmt.Sprintf("%s %s", invitation.Filename, msg),
			})
		}
	}
	if len(flds) == 0 {
		return nil
	}
	return NewValidationError(errInvalidReport, flds...)
}

func checkAttachment(a Attachment, allowed []string, want string) string {
	if len(a.Data) == 0 {
		return "is empty"
	}
	mt := DetectContentType(a.Data)
	for _, t := range allowed {
		if mt == t {
			return ""
		}
	}
	return "must be " + want
}

// DetectContentType sniffs a MIME type with the stdlib first and falls back to
// mimetype when the result is ambiguous.
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(data)
	if mt != "application/octet-stream" {
		// drop parameters such as "; charset=utf-8"
		return strings.TrimSpace(strings.SplitN(mt, ";", 2)[0])
	}
	return mimetype.Detect(data).String()
}
