package input

import (
	"path/filepath"

	"github.com/relloyd/stageload/aws/s3"
	"github.com/relloyd/stageload/constants"
)

// ResolvePath returns the staged file location.
// With no override it is <pipelineDir>/Data/Staged/<defaultFile>. An absolute or s3:// override is used
// as-is and a relative override is resolved against pipelineDir.
func ResolvePath(pipelineDir string, override string, defaultFile string) string {
	if override != "" {
		if s3.IsS3Path(override) || filepath.IsAbs(override) {
			return override
		}
		return filepath.Join(pipelineDir, override)
	}
	return filepath.Join(pipelineDir, constants.StagedDirDefault, defaultFile)
}
