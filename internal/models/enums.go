package models

import (
	"path"
	"strings"
)

// Role is the closed set of account roles
type Role string

const (
	RoleUser   Role = "USER"
	RoleAdmin  Role = "ADMIN"
	RoleLawyer Role = "LAWYER"
)

// CrimeType is the closed set of incident classifications
type CrimeType string

const (
	CrimeHomicide        CrimeType = "HOMICIDE"
	CrimeAssault         CrimeType = "ASSAULT"
	CrimeTheft           CrimeType = "THEFT"
	CrimeRobbery         CrimeType = "ROBBERY"
	CrimeBurglary        CrimeType = "BURGLARY"
	CrimeArson           CrimeType = "ARSON"
	CrimeVandalism       CrimeType = "VANDALISM"
	CrimeFraud           CrimeType = "FRAUD"
	CrimeEmbezzlement    CrimeType = "EMBEZZLEMENT"
	CrimeKidnapping      CrimeType = "KIDNAPPING"
	CrimeCybercrime      CrimeType = "CYBERCRIME"
	CrimeDrugTrafficking CrimeType = "DRUG_TRAFFICKING"
	CrimeRape            CrimeType = "RAPE"
)

// CrimeTypes lists every CrimeType in display order
var CrimeTypes = []CrimeType{
	CrimeHomicide, CrimeAssault, CrimeTheft, CrimeRobbery, CrimeBurglary,
	CrimeArson, CrimeVandalism, CrimeFraud, CrimeEmbezzlement, CrimeKidnapping,
	CrimeCybercrime, CrimeDrugTrafficking, CrimeRape,
}

func (t CrimeType) Valid() bool {
	for _, known := range CrimeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Verification is the moderation state of a crime report
type Verification string

const (
	VerificationPending    Verification = "PENDING"
	VerificationVerified   Verification = "VERIFIED"
	VerificationUnverified Verification = "UNVERIFIED"
)

func (v Verification) Valid() bool {
	switch v {
	case VerificationPending, VerificationVerified, VerificationUnverified:
		return true
	}
	return false
}

// MediaType tags attached files
type MediaType string

const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
	MediaOther MediaType = "OTHER"
)

func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaVideo || t == MediaOther
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

// InferMediaType guesses the media type from a content type, falling back to
// the file extension of name.
func InferMediaType(contentType, name string) MediaType {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo
	}

	ext := strings.ToLower(path.Ext(name))
	switch {
	case imageExtensions[ext]:
		return MediaImage
	case videoExtensions[ext]:
		return MediaVideo
	}
	return MediaOther
}
