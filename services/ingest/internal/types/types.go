package types

type WebhookResponse struct {
	Status string `json:"status"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

type FieldErrorItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type FieldErrorsResponse struct {
	Detail []FieldErrorItem `json:"detail"`
}

type MessagesListRequest struct {
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset,default=0"`
	From   string `form:"from,optional"`
	Since  string `form:"since,optional"`
	Q      string `form:"q,optional"`
}

type MessageItem struct {
	MessageId string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Ts        string  `json:"ts"`
	Text      *string `json:"text"`
}

type MessagesListResponse struct {
	Data   []MessageItem `json:"data"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type SenderCountItem struct {
	From  string `json:"from"`
	Count int64  `json:"count"`
}

type StatsResponse struct {
	TotalMessages     int64             `json:"total_messages"`
	SendersCount      int64             `json:"senders_count"`
	MessagesPerSender []SenderCountItem `json:"messages_per_sender"`
	FirstMessageTs    *string           `json:"first_message_ts"`
	LastMessageTs     *string           `json:"last_message_ts"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
