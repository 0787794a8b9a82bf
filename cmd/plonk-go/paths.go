package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// inWorkdir reports an error when path, once resolved, lies outside the
// working directory. The tool only touches files below where it was started.
func inWorkdir(path string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(wd, abs)
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return fmt.Errorf("%s: outside the working directory", path)
	}
	return nil
}

// checkPaths applies inWorkdir to every file flag that is set.
func checkPaths() error {
	for _, p := range []string{configFile, ursFile, circuitFile, provingIndexFile, verifyingIndexFile, proofFile, reportFile} {
		if p == "" {
			continue
		}
		if err := inWorkdir(p); err != nil {
			return err
		}
	}
	return nil
}
