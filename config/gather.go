package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/flashbots/flashblocks-ssz/utils"
)

type Gather struct {
	Duration         time.Duration `yaml:"duration"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	ReadBufferSize   int           `yaml:"read_buffer_size_mb"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	URL              string        `yaml:"url"`
}

var (
	errGatherInvalidDuration         = errors.New("invalid gather duration")
	errGatherInvalidHandshakeTimeout = errors.New("invalid handshake timeout")
	errGatherInvalidReadBufferSize   = errors.New("invalid read buffer size")
	errGatherInvalidReadTimeout      = errors.New("invalid read timeout")
	errGatherInvalidURL              = errors.New("invalid gather url")
)

func (cfg *Gather) Validate() error {
	errs := make([]error, 0)

	{ // Duration
		if cfg.Duration < 0 {
			errs = append(errs, fmt.Errorf("%w: can't be negative: %s",
				errGatherInvalidDuration, cfg.Duration,
			))
		}
		if cfg.Duration > 24*time.Hour {
			errs = append(errs, fmt.Errorf("%w: too high, must be <=24h: %s",
				errGatherInvalidDuration, cfg.Duration,
			))
		}
	}

	{ // HandshakeTimeout
		if cfg.HandshakeTimeout <= 0 {
			errs = append(errs, fmt.Errorf("%w: must be positive: %s",
				errGatherInvalidHandshakeTimeout, cfg.HandshakeTimeout,
			))
		}
		if cfg.HandshakeTimeout > time.Minute {
			errs = append(errs, fmt.Errorf("%w: too high, must be <=1m: %s",
				errGatherInvalidHandshakeTimeout, cfg.HandshakeTimeout,
			))
		}
	}

	{ // ReadBufferSize
		if cfg.ReadBufferSize < 1 {
			errs = append(errs, fmt.Errorf("%w: too low, must be >=1: %d",
				errGatherInvalidReadBufferSize, cfg.ReadBufferSize,
			))
		}
		if cfg.ReadBufferSize > 4096 {
			errs = append(errs, fmt.Errorf("%w: too high, must be <=4096: %d",
				errGatherInvalidReadBufferSize, cfg.ReadBufferSize,
			))
		}
	}

	{ // ReadTimeout
		if cfg.ReadTimeout < 0 {
			errs = append(errs, fmt.Errorf("%w: can't be negative: %s",
				errGatherInvalidReadTimeout, cfg.ReadTimeout,
			))
		}
	}

	{ // URL
		if cfg.URL != "" {
			u, err := url.Parse(cfg.URL)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w",
					errGatherInvalidURL, cfg.URL, err,
				))
			} else if scheme := strings.ToLower(u.Scheme); scheme != "ws" && scheme != "wss" {
				errs = append(errs, fmt.Errorf("%w: unsupported scheme: %s",
					errGatherInvalidURL, cfg.URL,
				))
			}
		}
	}

	return utils.FlattenErrors(errs)
}
