package message

// FileKind classifies an attached file for prompt packaging purposes.
type FileKind string

const (
	FileKindImage FileKind = "image"
	FileKindAudio FileKind = "audio"
	FileKindOther FileKind = "other"
)

// FileDescriptor describes a file attached to a turn. Bytes is present
// only at ingress (the transport handed it to the turn coordinator);
// it is stripped — set to nil — before the turn state is persisted or
// logged. Description is filled in by the unified decision node.
type FileDescriptor struct {
	Filename    string   `json:"filename"`
	Kind        FileKind `json:"kind"`
	Mime        string   `json:"mime"`
	Size        int      `json:"size"`
	Bytes       []byte   `json:"-"`
	Description string   `json:"description,omitempty"`
}

// StripBytes returns a copy of descs with Bytes cleared, for the
// bytes-free state that gets persisted and snapshotted.
func StripBytes(descs []FileDescriptor) []FileDescriptor {
	out := make([]FileDescriptor, len(descs))
	for i, d := range descs {
		d.Bytes = nil
		out[i] = d
	}
	return out
}

// DetectKind infers a FileKind from a MIME type prefix.
func DetectKind(mime string) FileKind {
	switch {
	case len(mime) >= 6 && mime[:6] == "image/":
		return FileKindImage
	case len(mime) >= 6 && mime[:6] == "audio/":
		return FileKindAudio
	default:
		return FileKindOther
	}
}
