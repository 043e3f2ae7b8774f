package dylib

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Resolver finds and loads one shared library out of an ordered candidate list.
//
// Each candidate is tried first by its bare name through the platform search,
// then from every directory of the widened search path. A library that loads
// but lacks a Required symbol is closed and skipped. The outcome of the first
// Resolve call, success or failure, is kept for the lifetime of the Resolver.
type Resolver struct {
	Candidates []Candidate
	Search     SearchPath
	Required   []string
	Pin        Pin
	Loader     Loader
	Logger     logrus.FieldLogger

	once   sync.Once
	handle Handle
	err    error
}

// Resolve returns the resolved handle. Concurrent callers block until the
// single resolution finishes and all observe its result.
func (r *Resolver) Resolve() (Handle, error) {
	r.once.Do(func() {
		r.handle, r.err = r.resolve()
	})
	return r.handle, r.err
}

func (r *Resolver) resolve() (Handle, error) {
	log := r.logger("Resolve")
	loader := r.Loader
	if loader == nil {
		loader = NativeLoader()
	}

	var attempts []Attempt
	record := func(c Candidate, path string, tier Tier, err error) {
		a := Attempt{Candidate: c.label(), Path: path, Tier: tier, Err: err}
		attempts = append(attempts, a)
		log.WithFields(attemptFields(a)).Debug("library load attempt failed")
	}
	found := func(c Candidate, h Handle, tier Tier) (Handle, error) {
		log.WithFields(logrus.Fields{
			"candidate": c.label(),
			"path":      h.Path(),
			"tier":      tier.String(),
			"attempts":  len(attempts) + 1,
		}).Info("native library loaded")
		return h, nil
	}

	existing := r.Search.snapshot()
	exported := false
	for _, c := range r.Candidates {
		h, err := r.try(loader, c, c.File, TierDefault)
		if err == nil {
			return found(c, h, TierDefault)
		}
		record(c, c.File, TierDefault, err)

		if c.IsPath() {
			continue
		}
		if !exported {
			exported = true
			shared, changed, werr := r.Search.export(existing)
			if werr != nil {
				log.WithError(werr).WithField("env", r.Search.Env).Warn("could not export widened search path")
			} else if changed {
				log.WithFields(logrus.Fields{
					"env":  r.Search.Env,
					"dirs": shared,
				}).Debug("widened library search path")
			}
		}
		dirs := r.Search.dirsFor(c, existing)
		for _, dir := range dirs {
			path := filepath.Join(dir, c.File)
			h, err := r.try(loader, c, path, TierWidened)
			if err == nil {
				return found(c, h, TierWidened)
			}
			record(c, path, TierWidened, err)
		}
	}

	rerr := &ResolveError{Attempts: attempts}
	log.WithFields(logrus.Fields{
		"candidates": rerr.Candidates(),
		"attempts":   len(attempts),
	}).Error("native library not found")
	return nil, rerr
}

func (r *Resolver) try(loader Loader, c Candidate, path string, tier Tier) (Handle, error) {
	if r.Pin.enabled() {
		if tier == TierDefault && !c.IsPath() {
			if r.Pin.Strict {
				return nil, ErrPinUnverifiable
			}
			r.logger("try").WithField("candidate", c.label()).Warn("loading unpinned library through the platform search")
		} else if err := r.Pin.verify(path); err != nil {
			return nil, err
		}
	}

	h, err := loader.Open(path)
	if err != nil {
		return nil, err
	}
	if err := checkSymbols(h, r.Required); err != nil {
		if cerr := h.Close(); cerr != nil {
			r.logger("try").WithError(cerr).WithField("path", path).Warn("close after symbol check failed")
		}
		return nil, err
	}
	return h, nil
}

func checkSymbols(h Handle, names []string) error {
	for _, name := range names {
		if _, err := h.Symbol(name); err != nil {
			if !errors.Is(err, ErrSymbolNotFound) {
				err = &SymbolError{Symbol: name, Path: h.Path(), Err: err}
			}
			return err
		}
	}
	return nil
}
