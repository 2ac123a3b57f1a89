package interviewquiz

import (
	"flag"

	"github.com/golang/glog"
)

const verboseLevel = 2

// SetVerbose raises glog's verbosity so VerboseLog output is written
func SetVerbose(verbose bool) {
	level := "0"
	if verbose {
		level = "2"
	}
	if err := flag.Set("v", level); err != nil {
		glog.Warningf("failed to set log verbosity: %v", err)
	}
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	glog.V(verboseLevel).Infof(format, v...)
}
