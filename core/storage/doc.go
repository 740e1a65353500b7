// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so spreadsheet backups can be mirrored to an
// S3-compatible bucket in addition to the local backup copy. Mirroring is
// optional and disabled by default.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
