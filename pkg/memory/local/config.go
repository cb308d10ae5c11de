package local

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
)

const (
	DefaultK  = 10
	DefaultT  = 50
	DefaultNR = 2
	DefaultNF = 5
	DefaultNS = 5
)

// Config holds the capacities of the local memory driver. They are fixed at
// construction; there is no runtime mutation API.
type Config struct {
	// K is the recent-block window size.
	K int `validate:"gt=0"`

	// T is the frequency table capacity.
	T int `validate:"gt=0"`

	// NR, NF and NS are the sizes of the recent, stable and single-tool
	// recommendation lists. NS also bounds the single-tool tracker.
	NR int `validate:"gt=0"`
	NF int `validate:"gt=0"`
	NS int `validate:"gt=0"`

	// MaxBlockLen bounds subsequence enumeration. Zero selects
	// subseq.DefaultMaxLen.
	MaxBlockLen int `validate:"gte=0,lte=20"`
}

// DefaultConfig returns the default capacities.
func DefaultConfig() Config {
	return Config{
		K:           DefaultK,
		T:           DefaultT,
		NR:          DefaultNR,
		NF:          DefaultNF,
		NS:          DefaultNS,
		MaxBlockLen: subseq.DefaultMaxLen,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects non-positive capacities with a *memory.ConfigError.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		value, _ := fe.Value().(int)
		return &memory.ConfigError{Field: fieldName(fe.Field()), Value: value, Rule: rule(fe)}
	}
	return err
}

func rule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "lte":
		return "must be <= " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "must be > 0"
	}
}

func fieldName(field string) string {
	if field == "MaxBlockLen" {
		return "max_block_len"
	}
	return strings.ToLower(field)
}
