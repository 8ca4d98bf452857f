package config

import (
	"errors"
	"reflect"

	"github.com/flashbots/flashblocks-ssz/utils"
)

type Config struct {
	Log *Log `yaml:"log"`

	Gather   *Gather   `yaml:"gather"`
	Snapshot *Snapshot `yaml:"snapshot"`

	Metrics *Metrics `yaml:"metrics"`
}

type validatee interface {
	Validate() error
}

func New() *Config {
	return &Config{
		Log: &Log{},

		Gather:   &Gather{},
		Snapshot: &Snapshot{},

		Metrics: &Metrics{},
	}
}

var (
	errConfigNoInput = errors.New("neither snapshot file nor gather url are configured")
)

func (c *Config) Validate() error {
	if c.Snapshot.Input == "" && c.Gather.URL == "" {
		return errConfigNoInput
	}

	return validate(c)
}

func validate(item interface{}) error {
	v := reflect.ValueOf(item)

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	errs := []error{}
	for idx := 0; idx < v.NumField(); idx++ {
		field := v.Field(idx)

		if field.Kind() == reflect.Ptr && field.IsNil() {
			continue
		}

		if v, ok := field.Interface().(validatee); ok {
			if err := v.Validate(); err != nil {
				errs = append(errs, err)
			}
		}

		if field.Kind() == reflect.Ptr {
			field = field.Elem()
		}

		switch field.Kind() {
		case reflect.Struct:
			if err := validate(field.Interface()); err != nil {
				errs = append(errs, err)
			}
		case reflect.Slice, reflect.Array:
			for jdx := 0; jdx < field.Len(); jdx++ {
				if err := validate(field.Index(jdx).Interface()); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	return utils.FlattenErrors(errs)
}
