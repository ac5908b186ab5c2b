package service_test

import "go-depsolve/resolve"

func binaryRow(repoID, name, version, sourceName string) resolve.BinaryRow {
	return resolve.BinaryRow{RepoID: repoID, Name: name, Version: version, SourceName: sourceName}
}

func providerRefs(repoID, name, sourceName, version string) []resolve.ProviderRef {
	return []resolve.ProviderRef{{
		Key:        repoID + "\x00b\x00" + name,
		Name:       name,
		SourceName: sourceName,
		Version:    version,
	}}
}
