// README: Compressed archive export (§4.11), replacing the original's
// numpy.savez_compressed with a gzip-compressed tar of per-episode JSON
// blobs. No dependency in the retrieved pack offers a compressed
// multi-key archive format (the domain deps it does carry are DB/cache/
// transport/web, not archive formats), so this one ambient concern is
// implemented on the standard library alone — justified in DESIGN.md.
package metrics

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
)

// ExportArchive writes one "<episode-id>.json" entry per episode into a
// gzip-compressed tar stream.
func ExportArchive(w io.Writer, episodes []EpisodeMetrics) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	for _, ep := range episodes {
		blob, err := json.Marshal(ep)
		if err != nil {
			return fmt.Errorf("marshal episode %s: %w", ep.EpisodeID, err)
		}
		hdr := &tar.Header{
			Name: string(ep.EpisodeID) + ".json",
			Mode: 0o644,
			Size: int64(len(blob)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(blob); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}
