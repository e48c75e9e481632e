package vars

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/ardnew/tmplc/pkg"
)

// PathEnv names the environment variable holding extra directories, separated
// by [os.PathListSeparator], that are searched for variable files.
const PathEnv = pkg.EnvPrefix + "VARS_PATH"

// Extensions are tried in order when a variable file is named without one.
//
//nolint:gochecknoglobals
var Extensions = []string{".yaml", ".yml", ".json"}

// SearchPath returns the directories searched for relative variable file
// names: the working directory, then the configuration directory, then each
// entry of [PathEnv]. Directories that do not exist are omitted.
func SearchPath() []string {
	prefix := make([]string, 0, 2)

	if wd, err := os.Getwd(); err == nil {
		prefix = append(prefix, wd)
	}

	prefix = append(prefix, pkg.ConfigDir())

	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(isDir),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(list) {
		if dir != "" && isDir(dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// Resolve returns the path of the variable file name. Absolute names and
// names containing a directory are used as given; bare names are looked up
// in each directory of [SearchPath], with and without [Extensions].
func Resolve(name string) (string, error) {
	if filepath.IsAbs(name) || filepath.Base(name) != name {
		if isFile(name) {
			return name, nil
		}

		return "", ErrLoad.Wrap(&fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}).
			With(slog.String("path", name))
	}

	for _, dir := range SearchPath() {
		for _, cand := range candidates(name) {
			if path := filepath.Join(dir, cand); isFile(path) {
				return path, nil
			}
		}
	}

	return "", ErrLoad.Wrap(errors.New(name + ": not found in search path")).
		With(slog.String("name", name))
}

func candidates(name string) []string {
	out := []string{name}

	if filepath.Ext(name) == "" {
		for _, ext := range Extensions {
			out = append(out, name+ext)
		}
	}

	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
