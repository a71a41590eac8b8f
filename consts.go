package logbridge

const (
	// ServiceName namespaces the bridge metrics and tags reporter output.
	ServiceName = "logbridge"
	emptyString = ""
	rootName    = "root"
	separator   = '.'
)

const (
	// BasicFormat contains only information which is not present in the
	// backend output.
	BasicFormat = "{{.Name}}: {{.Message}}"
	// DefaultDateFormat renders timestamps as 2006-01-02 15:04:05,000.
	DefaultDateFormat = "2006-01-02 15:04:05,000"
	// DefaultMask records every tag at every tier.
	DefaultMask = "F1E1W1I1D1"
)

const (
	// MinTier and MaxTier bound the configurable severities; 0 suppresses.
	MinTier = 0
	MaxTier = 4
)

const (
	errMsgNilConfig      = "Bridge config is nil."
	errMsgNilBackend     = "Backend is nil."
	errMsgNilRegistry    = "Registry is nil."
	errMsgNilService     = "Backend service is nil."
	errMsgAppCfgNotSet   = "Backend logging config is not set."
	errMsgConfigInvalid  = "Bridge configuration is invalid."
	errMsgSeverity       = "Severity configuration is invalid."
	errMsgTemplate       = "Message format template is invalid."
	errMsgMask           = "DbgLog mask is invalid."
	errMsgLoadConfig     = "Failed to load bridge configuration."
	errMsgNoChannels     = "No logging channels enabled."
	errMsgWorkingDir     = "Working dir has not been set."
	errMsgOutputLevel    = "Backend output level is invalid."
	errMsgMetricRegister = "Failed to register metric."
)
