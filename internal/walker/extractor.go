package walker

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/shipshape/internal/models"
)

// extract builds the record for one file. Stat and read failures never
// abort the walk: the path still yields a partial record plus an
// unreadable issue, so every issue keeps a backing record.
func (w *Walker) extract(path string) (models.FileRecord, []models.Issue) {
	name := filepath.Base(path)
	record := models.FileRecord{
		Path:      path,
		Name:      name,
		Extension: filepath.Ext(name),
		Hidden:    strings.HasPrefix(name, "."),
	}
	if rel, err := filepath.Rel(w.root, path); err == nil {
		record.RelPath = rel
	}
	record.MIMEType = mimeByExtension(record.Extension)

	info, err := os.Stat(path)
	if err != nil {
		w.logger.LogWarn(fmt.Sprintf("cannot stat %s: %v", path, err))
		return record, []models.Issue{unreadableIssue(path, err)}
	}

	record.Size = info.Size()
	record.Modified = info.ModTime()
	record.Created, record.Accessed = fileTimes(info)
	record.Owner = fileOwner(info)
	record.ReadOnly = info.Mode().Perm()&0200 == 0

	if w.opts.HashThreshold > 0 && info.Size() <= w.opts.HashThreshold {
		hash, err := hashFile(path)
		if err != nil {
			w.logger.LogWarn(fmt.Sprintf("cannot read %s: %v", path, err))
			return record, []models.Issue{unreadableIssue(path, err)}
		}
		record.Hash = hash
	}

	return record, nil
}

func unreadableIssue(path string, err error) models.Issue {
	return models.Issue{
		Path:        path,
		Kind:        models.KindUnreadable,
		Severity:    models.DefaultSeverities()[models.KindUnreadable],
		Description: "file could not be read",
		Detail:      map[string]string{models.DetailError: err.Error()},
	}
}

// hashFile streams the file through MD5. The digest is a content
// fingerprint for duplicate grouping, not a security measure.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
