package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/anomalab/anomalab-go/internal/domain"
	"github.com/minio/minio-go/v7"
	"gopkg.in/yaml.v3"
)

// ObjectCatalog serves datasets from an object store bucket using the
// same key layout as FSCatalog: <id>.csv plus an optional
// <id>.meta.yaml sidecar.
type ObjectCatalog struct {
	client *minio.Client
	bucket string
}

func NewObjectCatalog(client *minio.Client, bucket string) (*ObjectCatalog, error) {
	if client == nil {
		return nil, errors.New("minio client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	return &ObjectCatalog{client: client, bucket: bucket}, nil
}

func (c *ObjectCatalog) Resolve(ctx context.Context, id string) (domain.Dataset, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, id+".csv", minio.GetObjectOptions{})
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("get dataset object %s: %w", id, err)
	}
	defer obj.Close()

	// GetObject is lazy; the first read surfaces a missing key.
	body, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return domain.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
		}
		return domain.Dataset{}, fmt.Errorf("read dataset object %s: %w", id, err)
	}

	metadata, err := c.readMetadata(ctx, id)
	if err != nil {
		return domain.Dataset{}, err
	}
	return readDataset(id, strings.NewReader(string(body)), metadata)
}

func (c *ObjectCatalog) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	for info := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", c.bucket, info.Err)
		}
		if !strings.HasSuffix(info.Key, ".csv") {
			continue
		}
		id := strings.TrimSuffix(info.Key, ".csv")
		metadata, err := c.readMetadata(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: id, Metadata: metadata})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (c *ObjectCatalog) readMetadata(ctx context.Context, id string) (map[string]string, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, id+".meta.yaml", minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get metadata object %s: %w", id, err)
	}
	defer obj.Close()

	blob, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata object %s: %w", id, err)
	}
	var metadata map[string]string
	if err := yaml.Unmarshal(blob, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %s: metadata: %v", ErrDatasetCorrupt, id, err)
	}
	return metadata, nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey"
}
