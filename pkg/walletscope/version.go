package walletscope

// Version is reported to the collector as the SDK version.
const Version = "1.0.0"
