package models

import "time"

// BatchStatus enumerates the lifecycle states of an intake batch.
type BatchStatus string

const (
	BatchReceived       BatchStatus = "RECEIVED"
	BatchProcessing     BatchStatus = "PROCESSING"
	BatchDryingComplete BatchStatus = "DRYING_COMPLETE"
	BatchPacked         BatchStatus = "PACKED"
)

// Batch is one intake lot of raw mushrooms tracked through processing.
type Batch struct {
	ID                  string         `bson:"_id" json:"id"`
	Status              BatchStatus    `bson:"status" json:"status"`
	SourceFarm          string         `bson:"sourceFarm" json:"sourceFarm"`
	FarmBatchID         string         `bson:"farmBatchId,omitempty" json:"farmBatchId,omitempty"`
	Species             string         `bson:"species,omitempty" json:"species,omitempty"`
	FlushNumber         string         `bson:"flushNumber,omitempty" json:"flushNumber,omitempty"`
	DateReceived        string         `bson:"dateReceived" json:"dateReceived"`
	RawWeightKg         float64        `bson:"rawWeightKg" json:"rawWeightKg"`
	SpoiledWeightKg     float64        `bson:"spoiledWeightKg" json:"spoiledWeightKg"`
	NetWeightKg         float64        `bson:"netWeightKg" json:"netWeightKg"`
	RemainingWeightKg   float64        `bson:"remainingWeightKg,omitempty" json:"remainingWeightKg,omitempty"`
	SelectedRecipeName  string         `bson:"selectedRecipeName,omitempty" json:"selectedRecipeName,omitempty"`
	RecipeType          string         `bson:"recipeType,omitempty" json:"recipeType,omitempty"`
	ProcessConfig       *ProcessConfig `bson:"processConfig,omitempty" json:"processConfig,omitempty"`
	ProcessingWastageKg float64        `bson:"processingWastageKg,omitempty" json:"processingWastageKg,omitempty"`
	WastageReason       string         `bson:"wastageReason,omitempty" json:"wastageReason,omitempty"`
	QualityCheckPassed  bool           `bson:"qualityCheckPassed,omitempty" json:"qualityCheckPassed,omitempty"`
	PackedDate          string         `bson:"packedDate,omitempty" json:"packedDate,omitempty"`
	PackCount           int            `bson:"packCount,omitempty" json:"packCount,omitempty"`
}

// InputWeightKg is the weight a processing run must account for at QC.
func (b Batch) InputWeightKg() float64 {
	if b.RemainingWeightKg != 0 {
		return b.RemainingWeightKg
	}
	return b.NetWeightKg
}

// ProcessConfig holds the timing parameters of an active processing run.
// StartTime is expressed in unix milliseconds so it survives the legacy
// spreadsheet JSON column unchanged.
type ProcessConfig struct {
	StartTime            int64 `bson:"startTime" json:"startTime"`
	WashDurationSeconds  int64 `bson:"washDurationSeconds" json:"washDurationSeconds"`
	DrainDurationSeconds int64 `bson:"drainDurationSeconds" json:"drainDurationSeconds"`
	CookDurationSeconds  int64 `bson:"cookDurationSeconds" json:"cookDurationSeconds"`
	TotalDurationSeconds int64 `bson:"totalDurationSeconds" json:"totalDurationSeconds"`
}

// Started returns StartTime as a time.Time.
func (p ProcessConfig) Started() time.Time {
	return time.UnixMilli(p.StartTime)
}

// Stage is one sequential phase of a processing run.
type Stage string

const (
	StageWash     Stage = "WASH"
	StageDrain    Stage = "DRAIN"
	StageCook     Stage = "COOK"
	StageComplete Stage = "COMPLETE"
)

// StageView is the derived, display-ready state of a run at a given instant.
type StageView struct {
	BatchID          string  `json:"batchId,omitempty"`
	Stage            Stage   `json:"stage"`
	ElapsedSeconds   int64   `json:"elapsedSeconds"`
	RemainingSeconds int64   `json:"remainingSeconds"`
	Progress         float64 `json:"progress"`
	Label            string  `json:"label,omitempty"`
	Warning          string  `json:"warning,omitempty"`
}

// IntakeRequest carries the data captured when raw material arrives.
type IntakeRequest struct {
	SourceFarm      string  `json:"sourceFarm" binding:"required"`
	RawWeightKg     float64 `json:"rawWeightKg" binding:"required,gt=0"`
	SpoiledWeightKg float64 `json:"spoiledWeightKg" binding:"gte=0"`
	FarmBatchID     string  `json:"farmBatchId"`
	Species         string  `json:"species"`
	FlushNumber     string  `json:"flushNumber"`
}

// FinalizeRequest carries the QC weights recorded when a run is unloaded.
type FinalizeRequest struct {
	GoodWeightKg    float64 `json:"goodWeightKg" binding:"gte=0"`
	WastageWeightKg float64 `json:"wastageWeightKg" binding:"gte=0"`
	WastageReason   string  `json:"wastageReason"`
}

// StartRequest selects the recipe a run is parameterised by.
type StartRequest struct {
	RecipeID string `json:"recipeId" binding:"required"`
}
