package core

import (
	packageurl "github.com/package-url/packageurl-go"
)

// purlType is the package-URL type for catalog entries. There is no
// registered type for editor packages, so the generic namespace-less
// "sublime" type is used.
const purlType = "sublime"

// PURL returns a package URL identifying the resolved release, e.g.
// "pkg:sublime/Alignment@1.2.0". Useful for SBOM and provenance tooling.
func (r *Release) PURL() string {
	p := packageurl.NewPackageURL(purlType, "", r.Name, r.Version, nil, "")
	return p.ToString()
}

// EntryPURL returns a versionless package URL for a catalog entry.
func EntryPURL(e *Entry) string {
	p := packageurl.NewPackageURL(purlType, "", e.Name, "", nil, "")
	return p.ToString()
}
