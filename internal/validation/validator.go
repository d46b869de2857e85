package validation

import (
	"errors"
	"fmt"
	"math"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// FileMeta describes one uploaded file before it is persisted.
type FileMeta struct {
	Name string
	Size int64
}

// GenerateInput is the parsed multipart form of a generation request.
type GenerateInput struct {
	QuizType      string     `validate:"oneof=mcq fill_blank identification matching mixed"`
	QuestionCount int        `validate:"min=5,max=100"`
	Difficulty    string     `validate:"max=200"`
	Files         []FileMeta `validate:"min=1"`
}

// Validator validates inbound requests and translates failures into the
// user-facing messages of the generation API.
type Validator struct {
	validate     *validator.Validate
	maxFiles     int
	maxFileBytes int64
}

// NewValidator creates a validator with the given upload limits. Zero values
// fall back to the defaults.
func NewValidator(uploadCfg config.UploadConfig) *Validator {
	v := &Validator{
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		maxFiles:     uploadCfg.MaxFiles,
		maxFileBytes: uploadCfg.MaxFileBytes,
	}
	if v.maxFiles <= 0 {
		v.maxFiles = config.DefaultMaxFiles
	}
	if v.maxFileBytes <= 0 {
		v.maxFileBytes = config.DefaultMaxFileSize
	}
	return v
}

// ParseQuestionCount converts the form value into a whole number. Anything that
// is not a finite integer yields -1, which fails range validation.
func ParseQuestionCount(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return -1
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return -1
	}
	return int(f)
}

// ValidateGenerateInput checks fields in order (quiz type, count, files) and
// returns the first failure as an invalid-input DomainError.
func (v *Validator) ValidateGenerateInput(in GenerateInput) error {
	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return domain.NewInternalError("request validation failed", err)
		}
		return domain.NewInvalidInputError(generateMessage(fieldErrs[0]))
	}

	if len(in.Files) > v.maxFiles {
		return domain.NewInvalidInputError(fmt.Sprintf("Max %d files allowed.", v.maxFiles))
	}
	for _, f := range in.Files {
		if err := v.validate.Var(f.Size, "max="+strconv.FormatInt(v.maxFileBytes, 10)); err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("%s exceeds %dMB limit.", f.Name, v.maxFileBytes/(1024*1024)))
		}
	}
	return nil
}

func generateMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "QuizType":
		return "Invalid quiz type."
	case "QuestionCount":
		return "Question count must be 5-100."
	case "Files":
		return "At least one file is required."
	case "Difficulty":
		return "Difficulty must be at most 200 characters."
	}
	return fmt.Sprintf("Invalid %s.", strings.ToLower(fe.Field()))
}

// ValidateSessionID reports whether id looks like a session id (ULID).
func (v *Validator) ValidateSessionID(id string) error {
	if !validULID.MatchString(id) {
		return domain.NewSessionNotFoundError(id)
	}
	return nil
}
