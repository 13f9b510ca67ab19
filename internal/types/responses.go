package types

// ScoreResponse is the API response for a full scoring request.
type ScoreResponse struct {
	Success             bool             `json:"success"`
	Result              *ResumeRagResult `json:"result"`
	JDTextLength        int              `json:"jd_text_length"`
	ResumeTextLength    int              `json:"resume_text_length"`
	JDTokenEstimate     int              `json:"jd_token_estimate"`
	ResumeTokenEstimate int              `json:"resume_token_estimate"`
	JDText              string           `json:"jd_text"`
	ResumeText          string           `json:"resume_text"`
	Questions           *JDQuestions     `json:"questions"`
	Message             string           `json:"message"`
}

// TokenEstimateResponse reports approximate token counts without running the pipeline.
type TokenEstimateResponse struct {
	JDTextLength        int `json:"jd_text_length"`
	ResumeTextLength    int `json:"resume_text_length"`
	JDTokenEstimate     int `json:"jd_token_estimate"`
	ResumeTokenEstimate int `json:"resume_token_estimate"`
}

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"` // machine-readable code
	Message string `json:"message"`
}
