package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// reader coerces viper values and collects coercion errors.
type reader struct {
	v    *viper.Viper
	errs []error
}

func (r *reader) fail(key string, raw any, err error) {
	r.errs = append(r.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, fmt.Sprint(raw), err))
}

// string returns a string value
func (r *reader) string(key string) string {
	raw := r.v.Get(key)
	s, err := cast.ToStringE(raw)
	if err != nil {
		r.fail(key, raw, err)
	}
	return s
}

// bool returns a bool value, accepting yes/no and on/off besides strconv forms
func (r *reader) bool(key string) bool {
	raw := r.v.Get(key)
	b, err := parseBool(raw)
	if err != nil {
		r.fail(key, raw, err)
	}
	return b
}

// int returns an int value
func (r *reader) int(key string) int {
	raw := r.v.Get(key)
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	i, err := cast.ToIntE(raw)
	if err != nil {
		r.fail(key, raw, err)
	}
	return i
}

// duration returns a duration value
func (r *reader) duration(key string) time.Duration {
	raw := r.v.Get(key)
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	d, err := cast.ToDurationE(raw)
	if err != nil {
		r.fail(key, raw, err)
	}
	return d
}

func (r *reader) err() error {
	return errors.Join(r.errs...)
}

func parseBool(raw any) (bool, error) {
	if s, ok := raw.(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
		raw = s
	}
	return cast.ToBoolE(raw)
}
