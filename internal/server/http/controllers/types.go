package controllers

// Response bodies for HTTP controllers

// xaddResp is returned by POST /xadd/{stream}.
type xaddResp struct {
	ID string `json:"id"`
}

// xlenResp is returned by GET /xlen/{stream}.
type xlenResp struct {
	Length int `json:"length"`
}

// streamsResp is returned by GET /streams.
type streamsResp struct {
	Streams []string `json:"streams"`
}
