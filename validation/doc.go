// Package validation validates declarative pipeline configuration.
//
// Struct tag validation (go-playground/validator) reports problems by their
// config key path, so a missing program on the second stage reads
// "stages[1].program: is required". Cross-field rules that tags cannot
// express are collected with a Validator:
//
//	v := validation.New()
//	v.Merge("stages", validation.Validate(cfg))
//	v.Custom(cfg.Stages[0].Mode == "", "stages[0].mode", "must be empty on the first stage")
//	if err := v.Validate(); err != nil {
//	    return err
//	}
package validation
