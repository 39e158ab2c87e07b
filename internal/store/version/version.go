package version

// Record is the metadata for one stored version of one logical file. A file
// name is not unique across records; the file ID is. Records are rebuilt from
// every listing call and never persisted.
type Record struct {
	FileName        string `json:"fileName"`
	FileID          string `json:"fileId"`
	UploadTimestamp int64  `json:"uploadTimestamp"`
}
