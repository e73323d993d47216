package types

// Version is the version of cutrelease itself. Overwritten at build time with -ldflags.
var Version = "dev"

// AppName is used for the command name and the environment variable prefix
const AppName = "cutrelease"
