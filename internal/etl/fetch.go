package etl

import (
	"context"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// FetchArchives mirrors *.zip objects from a bucket into the inbound
// directory so a scheduled run can pick them up. Objects whose basename
// already exists locally or in the processed directory are skipped; the hash
// check still guards against content-level reprocessing either way.
func FetchArchives(ctx context.Context, bucket, prefix, rawDir, processedDir string) (int, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return 0, err
	}

	fetched := 0
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fetched, err
		}
		name := path.Base(attrs.Name)
		if !strings.HasSuffix(strings.ToLower(name), ".zip") {
			continue
		}
		if fileExists(filepath.Join(rawDir, name)) || fileExists(filepath.Join(processedDir, name)) {
			continue
		}

		if err := downloadObject(ctx, client, bucket, attrs.Name, filepath.Join(rawDir, name)); err != nil {
			return fetched, err
		}
		log.Printf("etl: fetched gs://%s/%s", bucket, attrs.Name)
		fetched++
	}
	return fetched, nil
}

func downloadObject(ctx context.Context, client *storage.Client, bucket, object, dest string) error {
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	// Write through a temp name so a cut connection never leaves a
	// half-written zip for the next run to pick up.
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
