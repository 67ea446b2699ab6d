// Package constants provides named constants used throughout the reportsummary codebase.
// This centralizes magic numbers and file names for better maintainability and documentation.
package constants

// Unit conversion and sampling constants
const (
	// DefaultTimeDivisor converts simulator seconds into minutes.
	DefaultTimeDivisor = 60.0

	// DefaultDataSyncInterval is the minimum distance, in minutes, between two
	// kept data sync samples.
	DefaultDataSyncInterval = 10.0
)

// Report file names inside a run directory. Names containing %s are
// formatted with the scenario name.
const (
	DefaultScenario = "realisticScenario"

	DeliveryProbabilityReport = "%s_DeliveryProbabilityReport.txt"
	BufferOccupancyReport     = "%s_BufferOccupancyReport.txt"
	EnergyLevelReport         = "%s_EnergyLevelReport.txt"
	DataSyncReport            = "%s_DataSyncReport.txt"
	TrafficReport             = "%s_TrafficReport.txt"

	DelayAnalysisFile     = "messageDelayAnalysis.txt"
	MulticastAnalysisFile = "multicastMessageAnalysis.txt"
	BroadcastAnalysisFile = "broadcastMessageAnalysis.txt"
)

// Message priorities analyzed per message type.
const (
	OneToOneDelayPriority  = 0
	MulticastDelayPriority = 1
)

// BroadcastPriorities are the broadcast priorities summarized by default.
var BroadcastPriorities = []int{2, 5, 9}

// Output layout constants
const (
	// GraphicsDir is the directory under the reports directory receiving charts.
	GraphicsDir = "graphics"

	// SummaryPDF is the file name of the multi-page chart document.
	SummaryPDF = "allGraphics.pdf"

	// DataDir is the per-workspace directory holding the archive and traces.
	DataDir = ".reportsummary"

	// ArchiveFile is the SQLite archive of averaged results inside DataDir.
	ArchiveFile = "summaries.db"

	// BackupDir is the directory under DataDir receiving archive backups.
	BackupDir = "backups"

	// AuditFile is the JSONL log of MCP tool calls inside DataDir.
	AuditFile = "audit.jsonl"

	// DefaultBackupRetention is how many backups are kept after a backup.
	DefaultBackupRetention = 10
)

// Parse worker constants
const (
	// DefaultParseWorkers bounds concurrent report parsing per family.
	DefaultParseWorkers = 8

	// MaxParseWorkers caps the configurable worker count.
	MaxParseWorkers = 64
)

// Chart dimensions in inches.
const (
	DefaultChartWidth  = 8.0
	DefaultChartHeight = 6.0
)
