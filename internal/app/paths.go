package app

import "github.com/dkorolev/tandem/internal/domain"

// Store layout:
//
//	sessions/{code}                      full session document
//	sessions/{code}/host                 current host id
//	sessions/{code}/hostName             mirrored display name
//	sessions/{code}/playback             latest published playback state
//	sessions/{code}/members/{userId}     one member record
//	invites/{userId}/{code}              per-user invite mailbox

func sessionPath(code domain.SessionCode) string {
	return "sessions/" + string(code)
}

func hostPath(code domain.SessionCode) string {
	return sessionPath(code) + "/host"
}

func hostNamePath(code domain.SessionCode) string {
	return sessionPath(code) + "/hostName"
}

func playbackPath(code domain.SessionCode) string {
	return sessionPath(code) + "/playback"
}

func memberPath(code domain.SessionCode, id domain.UserID) string {
	return sessionPath(code) + "/members/" + string(id)
}

func memberHostFlagPath(code domain.SessionCode, id domain.UserID) string {
	return memberPath(code, id) + "/isHost"
}

func inviteBoxPath(id domain.UserID) string {
	return "invites/" + string(id)
}

func invitePath(id domain.UserID, code domain.SessionCode) string {
	return inviteBoxPath(id) + "/" + string(code)
}
