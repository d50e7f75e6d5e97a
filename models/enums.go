package models

const (
	PurchaseOrderStatusRequested = "requested"
	PurchaseOrderStatusConfirmed = "confirmed"
	PurchaseOrderStatusCancelled = "cancelled"
)

const (
	DeliveryStatusReceivedOk = "received-ok"
	DeliveryStatusDelayed    = "delayed"
)

// InspectionResultAutoInitial marks delivery lines written by the automatic initial receipt.
const InspectionResultAutoInitial = "auto-initial"

const (
	TransportModeTruck = "truck"
	TransportModeRail  = "rail"
	TransportModeShip  = "ship"
	TransportModeAir   = "air"
)
