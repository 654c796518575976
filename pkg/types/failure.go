package types

import "fmt"

// Stage names the step of the per-document cycle that failed
type Stage string

const (
	StageRead           Stage = "read"
	StageLookup         Stage = "lookup"
	StageParse          Stage = "parse"
	StageDeleteSections Stage = "delete_sections"
	StageUpsert         Stage = "upsert_document"
	StageSplit          Stage = "split"
	StageEmbed          Stage = "embed"
	StageInsertSection  Stage = "insert_section"
	StageSetChecksum    Stage = "set_checksum"
)

// DocumentError is a per-document failure. It never aborts a run.
type DocumentError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
