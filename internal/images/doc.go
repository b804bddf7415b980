// Package images fetches concert reference images and prepares them for
// vision classification: at most three images per item, each resized to fit
// 1024x1024 and re-encoded as JPEG before base64 encoding. Individual
// failures drop the affected image instead of aborting the batch.
package images
