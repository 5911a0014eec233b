package staticassert

import (
	"context"

	"github.com/wippyai/staticassert/config"
	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/generator"
)

// Version is the staticassert release.
const Version = "0.1.0"

func options(dir string) (generator.Options, error) {
	cfg, _, err := config.Discover(dir)
	if err != nil {
		return generator.Options{}, err
	}
	if err := cfg.Validate(); err != nil {
		return generator.Options{}, err
	}
	opts := generator.OptionsFrom(cfg)
	opts.Dir = dir
	opts.Tests = true
	return opts, nil
}

// Generate loads the packages matching patterns, resolved in dir, and
// writes their generated files. The configuration is discovered from dir
// upwards.
func Generate(ctx context.Context, dir string, patterns ...string) (*generator.Result, error) {
	opts, err := options(dir)
	if err != nil {
		return nil, err
	}
	return generator.New(opts).Run(ctx, patterns...)
}

// Check is Generate without writing. Out-of-date or missing generated files
// are returned as stale errors.
func Check(ctx context.Context, dir string, patterns ...string) error {
	opts, err := options(dir)
	if err != nil {
		return err
	}
	opts.Check = true
	res, err := generator.New(opts).Run(ctx, patterns...)
	if err != nil {
		return err
	}
	if len(res.Stale) == 0 {
		return nil
	}
	errs := make([]*errors.Error, len(res.Stale))
	for i, path := range res.Stale {
		errs[i] = errors.Stale(path)
	}
	return errors.NewViolationsError(errs)
}
