// Package log defines standard attribute keys for trajectory-prediction operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in trajgo. Using these standard keys enables better
// log analysis, monitoring, and debugging of prediction pipelines.
//
// The attributes are organized into categories:
//   - Model and Operation Context
//   - Scene and Data Characteristics
//   - Performance Metrics
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.scenes") to enable structured log analysis and filtering.

package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the architecture named by the configuration.
	// Examples: "SimpleMLP", "SimpleRNN", "Seq2Seq"
	ModelNameKey = "model.name"

	// DeviceKey records the configured execution target.
	// Examples: "cpu", "cuda"
	DeviceKey = "model.device"

	// OperationKey specifies the pipeline operation being performed.
	// Standard values: "predict", "transform", "featurize", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "config", "dataset", "models", "preprocessing"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the pipeline.
	// Examples: "loading", "preprocessing", "inference", "evaluation"
	PhaseKey = "ml.phase"
)

// Scene and Data Characteristics
// These attributes describe the structure and properties of data being processed.
const (
	// ScenesKey indicates the number of scenes in the dataset split.
	ScenesKey = "data.scenes"

	// AgentsKey indicates the number of tracked agents in a scene.
	AgentsKey = "data.agents"

	// LanesKey indicates the number of lane segments attached to a scene.
	LanesKey = "data.lanes"

	// InputTimestepsKey indicates the length of the observed window.
	InputTimestepsKey = "data.input_timesteps"

	// OutputTimestepsKey indicates the length of the predicted horizon.
	OutputTimestepsKey = "data.output_timesteps"

	// CoordDimsKey indicates the dimensionality of the coordinates modeled.
	CoordDimsKey = "data.coord_dims"

	// BatchSizeKey indicates the size of processing batches.
	BatchSizeKey = "data.batch_size"

	// NumWorkersKey indicates the parallelism degree of the loader.
	NumWorkersKey = "data.num_workers"

	// SceneIDKey identifies a single scene, usually the source file stem.
	SceneIDKey = "data.scene_id"

	// TransformKey names the transform currently being applied.
	TransformKey = "data.transform"
)

// Performance Metrics
// These attributes capture timing and evaluation information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// DurationSecondsKey records the execution time in seconds for longer operations.
	// Useful for full-dataset featurization passes.
	DurationSecondsKey = "perf.duration_seconds"

	// ADEKey records the average displacement error of a prediction batch.
	ADEKey = "metrics.ade"

	// FDEKey records the final displacement error of a prediction batch.
	FDEKey = "metrics.fde"

	// MSEKey records the mean squared error of a prediction batch.
	MSEKey = "metrics.mse"

	// EpochKey records the current epoch number when iterating the loader.
	EpochKey = "data.epoch"

	// BatchIndexKey records the index of the batch within the epoch.
	BatchIndexKey = "data.batch_index"
)

// Error and Warning Context
// These attributes provide additional context for error and warning messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "UNKNOWN_TRANSFORM", "INVALID_CONFIG"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "UnknownTransformError", "DimensionError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by the error logging functions.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides helpful suggestions for resolving issues.
	// Examples: "Check data.transforms spelling", "Use a scalar hidden_size"
	SuggestionKey = "error.suggestion"
)

// Configuration Context
// These attributes capture the configuration document driving a run.
const (
	// ConfigPathKey records where the configuration document was loaded from.
	ConfigPathKey = "config.path"

	// HiddenSizeKey records the configured hidden size(s).
	HiddenSizeKey = "hyperparams.hidden_size"

	// NumLayersKey records the configured stack depth.
	NumLayersKey = "hyperparams.num_layers"

	// DropoutKey records the configured dropout rate.
	DropoutKey = "hyperparams.dropout"

	// TrainValSplitKey records the configured train/validation fraction.
	TrainValSplitKey = "config.train_val_split"

	// ExperimentingKey records the dataset truncation flag.
	ExperimentingKey = "config.experimenting"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard pipeline operations
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationFeaturize = "featurize"
	OperationLoad      = "load"
	OperationValidate  = "validate"

	// Standard pipeline phases
	PhaseLoading       = "loading"
	PhasePreprocessing = "preprocessing"
	PhaseInference     = "inference"
	PhaseEvaluation    = "evaluation"

	// Standard error codes
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidConfig     = "INVALID_CONFIG"
	ErrorUnknownTransform  = "UNKNOWN_TRANSFORM"
	ErrorUnknownModel      = "UNKNOWN_MODEL"
)
