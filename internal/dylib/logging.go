package dylib

import "github.com/sirupsen/logrus"

// logFields returns the standard fields attached to every resolver log line.
func logFields(function string) logrus.Fields {
	return logrus.Fields{
		"package":  "dylib",
		"function": function,
	}
}

func (r *Resolver) logger(function string) logrus.FieldLogger {
	var base logrus.FieldLogger = r.Logger
	if base == nil {
		base = logrus.StandardLogger()
	}
	return base.WithFields(logFields(function))
}

func attemptFields(a Attempt) logrus.Fields {
	f := logrus.Fields{
		"candidate": a.Candidate,
		"path":      a.Path,
		"tier":      a.Tier.String(),
	}
	if a.Err != nil {
		f["error"] = a.Err.Error()
	}
	return f
}
