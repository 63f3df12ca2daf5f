// Package binary downloads, verifies and unpacks PHP release archives.
//
// # Security Model
//
// Archives are fetched from windows.php.net over HTTPS and, when the release
// manifest publishes one, checked against its SHA-256 before anything is
// extracted. Extraction refuses any entry that would land outside the
// target directory (absolute names, drive letters, ".." segments); the whole
// archive is checked before the first file is written.
//
// # Usage
//
//	d := binary.NewDownloader(logger)
//	if err := d.DownloadToFile(ctx, url, tmp); err != nil {
//	    return err
//	}
//	if err := binary.VerifySHA256(tmp, build.Zip.SHA256); err != nil {
//	    return err
//	}
//	err := binary.NewExtractor().ExtractZip(tmp, filepath.Join(base, "8.1.17"))
//
// # Architecture
//
// The package is organized into several components:
//   - Downloader: HTTP transport with retry logic and a fixed User-Agent
//   - VerifySHA256: checksum verification
//   - Extractor: zip extraction with path checks
package binary
