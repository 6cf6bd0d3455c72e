package main

// CLIVersion is reported by --version.
const CLIVersion = "v0.1.0"
