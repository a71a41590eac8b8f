package logbridge

import (
	"strings"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func validatorInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("loggername", validLoggerName); err != nil {
			panic(err)
		}
		if err := validate.RegisterValidation("dbgmask", validMask); err != nil {
			panic(err)
		}
	})
	return validate
}

// validLoggerName rejects prefixes that can never match on a dot boundary:
// a leading or trailing dot, or an empty segment. The root "" is valid.
func validLoggerName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == emptyString {
		return true
	}
	for _, segment := range strings.Split(name, string(separator)) {
		if segment == emptyString {
			return false
		}
	}
	return true
}

func validMask(fl validator.FieldLevel) bool {
	_, err := ParseMask(fl.Field().String())
	return err == nil
}

const severityRules = "dive,keys,loggername,endkeys,min=0,max=4"

func validateSeverity(c SeverityConfig) error {
	const op errors.Op = "logbridge.validateSeverity"
	if err := validatorInstance().Var(map[string]int(c), severityRules); err != nil {
		return errors.New(op).Err(err).Msg(errMsgSeverity)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	const op errors.Op = "logbridge.validateConfig"
	if cfg == nil {
		return errors.New(op).Msg(errMsgNilConfig)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	return nil
}
