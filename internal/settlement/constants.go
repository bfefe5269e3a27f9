package settlement

// Log messages
const (
	LogMsgLiquidated        = "Entries liquidated"
	LogMsgNothingToSell     = "No eligible entries to liquidate"
	LogMsgDeliveryRequested = "Delivery requested"
	LogMsgDispatchRetry     = "Dispatch attempt failed, retrying"
	LogMsgDispatchGaveUp    = "Dispatch abandoned, reversing delivery"
	LogMsgDeliveryReversed  = "Delivery reversed before dispatch"
)
