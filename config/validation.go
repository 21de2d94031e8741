package config

import (
	"fmt"
	"reflect"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/skiffhq/skiff/internal/errors"
	"github.com/skiffhq/skiff/internal/utils"
)

// ValidatePipelineConfig validates the pipeline config as an input.
// If not valid, it returns error
func ValidatePipelineConfig(conf *Pipeline) error {
	return validation.ValidateStruct(conf,
		validation.Field(&conf.Version, validation.Required),
		validation.Field(&conf.Name, validation.Required),
		nestedFields(&conf.Log,
			validation.Field(&conf.Log.Level, validation.In(
				LogLevelDebug,
				LogLevelInfo,
				LogLevelWarning,
				LogLevelError,
				LogLevelFatal,
			)),
		),
		validation.Field(&conf.Stages, validation.Required, validation.By(validateStages)),
	)
}

// validateStages reports every broken stage at once instead of stopping
// at the first, so one edit-validate cycle surfaces all the problems.
func validateStages(value interface{}) error {
	stages, ok := value.([]*Stage)
	if !ok {
		return fmt.Errorf("can't convert value to stages")
	}

	me := errors.NewMultiError("stage validation errors")

	nameCount := map[string]int{}
	for _, s := range stages {
		if s == nil {
			continue
		}
		nameCount[s.Name]++
	}
	dup := []string{}
	for k, v := range nameCount {
		if v > 1 {
			dup = append(dup, k)
		}
	}
	if len(dup) > 0 {
		me.Append(fmt.Errorf("duplicate stages are not allowed [%s]", strings.Join(dup, ",")))
	}

	var declared []string
	for _, s := range stages {
		if s == nil {
			continue
		}
		me.Append(validateStage(s, declared))
		declared = append(declared, s.Name)
	}
	return me.ToErr()
}

func validateStage(s *Stage, declared []string) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("stage name cannot be empty")
	}
	if len(s.Steps) == 0 && s.Deploy == nil {
		return fmt.Errorf("stage [%s] needs either steps or a deploy section", s.Name)
	}
	if len(s.Steps) > 0 && s.Deploy != nil {
		return fmt.Errorf("stage [%s] cannot have both steps and a deploy section", s.Name)
	}

	// needs can only reference stages declared before this one, which keeps
	// the declared order executable as-is and makes cycles unrepresentable
	for _, need := range s.Needs {
		if !utils.ContainsString(declared, need) {
			return fmt.Errorf("stage [%s] needs unknown or later stage [%s]", s.Name, need)
		}
	}

	for _, step := range s.Steps {
		if step == nil || strings.TrimSpace(step.Run) == "" {
			return fmt.Errorf("stage [%s] has a step without a run command", s.Name)
		}
	}

	if s.Deploy != nil && strings.TrimSpace(s.Deploy.DestinationDir) == "" {
		return fmt.Errorf("stage [%s] deploy section needs a destination_dir", s.Name)
	}
	return nil
}

// ozzo-validation helper for nested validation struct
// https://github.com/go-ozzo/ozzo-validation/issues/136
func nestedFields(target interface{}, fieldRules ...*validation.FieldRules) *validation.FieldRules {
	return validation.Field(target, validation.By(func(value interface{}) error {
		valueV := reflect.Indirect(reflect.ValueOf(value))
		if valueV.CanAddr() {
			addr := valueV.Addr().Interface()
			return validation.ValidateStruct(addr, fieldRules...)
		}
		return validation.ValidateStruct(target, fieldRules...)
	}))
}
