package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/frahmantamala/mastersight/internal"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
		_ = validate.RegisterValidation("trimmedmin", func(fl validator.FieldLevel) bool {
			n, err := parseParam(fl.Param())
			if err != nil {
				return false
			}
			return len([]rune(strings.TrimSpace(fl.Field().String()))) >= n
		})
	})
	return validate
}

// Struct validates s and converts the first failure into an AppError. The
// error code comes from the failing field's `errcode` tag.
func Struct(s interface{}) *apperrors.AppError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.ErrInvalidBody.WithCause(err)
	}

	fe := verrs[0]
	code := codeFor(s, fe.StructField())
	return apperrors.NewValidationError(fe.Field()+" failed on "+fe.Tag(), code).
		WithDetails(map[string]string{"field": fe.Field(), "rule": fe.Tag()})
}

func codeFor(s interface{}, field string) apperrors.ErrorCode {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(field); ok {
			if code := f.Tag.Get("errcode"); code != "" {
				return apperrors.ErrorCode(code)
			}
		}
	}
	return apperrors.ErrCodeInvalidBody
}

// IsStrongPassword requires at least eight characters with a lower case
// letter, an upper case letter, a digit and a symbol.
func IsStrongPassword(p string) bool {
	if len([]rune(p)) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// IsEmail runs the validator's email rule on a single value.
func IsEmail(email string) bool {
	return Validator().Var(email, "required,email") == nil
}

// MinName reports whether the trimmed name has at least min characters.
func MinName(name string, min int) bool {
	return len([]rune(strings.TrimSpace(name))) >= min
}

func parseParam(p string) (int, error) {
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("param must not be negative")
	}
	return n, nil
}
