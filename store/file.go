// Package store keeps JSON documents on disk.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/must"
)

// File is a JSON document of type T at Path. Readers and writers in other
// processes are kept apart with an advisory lock on Path+".lock".
type File[T any] struct {
	Path string
}

func (file File[T]) lock() *flock.Flock {
	return flock.New(file.Path + ".lock")
}

// Read returns os.ErrNotExist when the document has never been written.
func (file File[T]) Read() (out *T, err error) {
	flawP := flaw.P{"file_path": file.Path}

	lock := file.lock()
	if err := lock.RLock(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to acquire read lock: %v", err)).Append(flawP)
	}
	defer lock.Unlock() //nolint:errcheck

	f, err := os.Open(file.Path)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to open file for read: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close file: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()

	var v T
	if err := json.NewDecoder(f).Decode(&v); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode file contents: %v", err)).Append(flawP)
	}
	return &v, nil
}

// Write replaces the document atomically: v is written to a temporary file
// in the same directory which is then renamed over Path.
func (file File[T]) Write(v T) (err error) {
	flawP := flaw.P{"file_path": file.Path}

	dir := filepath.Dir(file.Path)
	if err := os.MkdirAll(dir, 0o0755); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to create parent directory: %v", err)).Append(flawP)
	}

	lock := file.lock()
	if err := lock.Lock(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to acquire write lock: %v", err)).Append(flawP)
	}
	defer lock.Unlock() //nolint:errcheck

	tmp, err := os.CreateTemp(dir, filepath.Base(file.Path)+".*.tmp")
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to create temporary file: %v", err)).Append(flawP)
	}
	tmpPath := tmp.Name()
	flawP["tmp_path"] = tmpPath
	defer func() {
		if nil != err {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := json.NewEncoder(tmp).Encode(v); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to encode file contents: %v", err)).Append(flawP)
	}
	if err := tmp.Sync(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to sync temporary file: %v", err)).Append(flawP)
	}
	if err := tmp.Close(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to close temporary file: %v", err)).Append(flawP)
	}
	if err := os.Rename(tmpPath, file.Path); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to move temporary file into place: %v", err)).Append(flawP)
	}
	return nil
}

// Remove deletes the document. Removing a missing document is not an error.
func (file File[T]) Remove() error {
	flawP := flaw.P{"file_path": file.Path}

	lock := file.lock()
	if err := lock.Lock(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to acquire write lock: %v", err)).Append(flawP)
	}
	defer lock.Unlock() //nolint:errcheck

	if err := os.Remove(file.Path); nil != err && !errors.Is(err, os.ErrNotExist) {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to remove file: %v", err)).Append(flawP)
	}
	return nil
}

func (file File[T]) Exists() bool {
	_, err := os.Stat(file.Path)
	return nil == err
}
