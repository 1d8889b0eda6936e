package prosper

// Account is the account summary returned by account/.
type Account struct {
	AvailableCashBalance                float64 `json:"AvailableCashBalance"`
	OutstandingPrincipalOnActiveNotes   float64 `json:"OutstandingPrincipalOnActiveNotes"`
	PendingInvestmentsPrimaryMkt        float64 `json:"PendingInvestmentsPrimaryMkt"`
	PendingInvestmentsSecondaryMkt      float64 `json:"PendingInvestmentsSecondaryMkt"`
	PendingQuickInvestOrders            float64 `json:"PendingQuickInvestOrders"`
	TotalAccountValue                   float64 `json:"TotalAccountValue"`
	TotalAmountInvestedOnActiveNotes    float64 `json:"TotalAmountInvestedOnActiveNotes"`
	TotalPrincipalReceivedOnActiveNotes float64 `json:"TotalPrincipalReceivedOnActiveNotes"`
}

// Note is a funded share of a loan held by the account.
type Note struct {
	AgeInMonths                   int     `json:"AgeInMonths"`
	AmountParticipation           float64 `json:"AmountParticipation"`
	BorrowerRate                  float64 `json:"BorrowerRate"`
	DaysPastDue                   float64 `json:"DaysPastDue"`
	DebtSaleProceedsReceived      float64 `json:"DebtSaleProceedsReceived"`
	GroupLeaderReward             float64 `json:"GroupLeaderReward"`
	InterestPaid                  float64 `json:"InterestPaid"`
	IsSold                        bool    `json:"IsSold"`
	LateFees                      float64 `json:"LateFees"`
	ListingNumber                 int     `json:"ListingNumber"`
	LoanNoteID                    string  `json:"LoanNoteID"`
	LoanNumber                    int     `json:"LoanNumber"`
	NextPaymentDueAmount          float64 `json:"NextPaymentDueAmount"`
	NextPaymentDueDate            *Date   `json:"NextPaymentDueDate"`
	NoteDefaultReason             *int    `json:"NoteDefaultReason"`
	NoteDefaultReasonDescription  string  `json:"NoteDefaultReasonDescription"`
	NoteStatus                    int     `json:"NoteStatus"`
	NoteStatusDescription         string  `json:"NoteStatusDescription"`
	OriginationDate               Date    `json:"OriginationDate"`
	PlatformFeesPaid              float64 `json:"PlatformFeesPaid"`
	PlatformProceedsGrossReceived float64 `json:"PlatformProceedsGrossReceived"`
	PrincipalBalance              float64 `json:"PrincipalBalance"`
	PrincipalRepaid               float64 `json:"PrincipalRepaid"`
	ProsperFees                   float64 `json:"ProsperFees"`
	ProsperRating                 string  `json:"ProsperRating"`
	ServiceFees                   float64 `json:"ServiceFees"`
	Term                          int     `json:"Term"`
	TotalAmountBorrowed           float64 `json:"TotalAmountBorrowed"`
}

// Listing is an open loan request available for funding.
type Listing struct {
	ListingNumber     int     `json:"ListingNumber"`
	ListingStatus     int     `json:"ListingStatus"`
	ProsperRating     string  `json:"ProsperRating"`
	ListingTerm       int     `json:"ListingTerm"`
	ListingAmount     float64 `json:"ListingAmount"`
	AmountFunded      float64 `json:"AmountFunded"`
	AmountRemaining   float64 `json:"AmountRemaining"`
	PercentFunded     float64 `json:"PercentFunded"`
	BorrowerRate      float64 `json:"BorrowerRate"`
	BorrowerAPR       float64 `json:"BorrowerAPR"`
	LenderYield       float64 `json:"LenderYield"`
	EstimatedReturn   float64 `json:"EstimatedReturn"`
	EstimatedLossRate float64 `json:"EstimatedLossRate"`
	ListingCategoryID int     `json:"ListingCategoryId"`
	IncomeRange       int     `json:"IncomeRange"`
	ListingStartDate  *Date   `json:"ListingStartDate"`
}

// Investment is an order placed against a listing.
type Investment struct {
	InvestmentKey            string  `json:"InvestmentKey"`
	MemberKey                string  `json:"MemberKey"`
	ListingNumber            int     `json:"ListingNumber"`
	LoanNumber               *int    `json:"LoanNumber"`
	InvestmentDate           Date    `json:"InvestmentDate"`
	AmountInvested           float64 `json:"AmountInvested"`
	ListingStatus            int     `json:"ListingStatus"`
	ListingStatusDescription string  `json:"ListingStatusDescription"`
}

// InvestResponse is the outcome of an Invest call.
type InvestResponse struct {
	Status          string  `json:"Status"`
	Message         string  `json:"Message"`
	ListingID       int     `json:"ListingId"`
	RequestedAmount float64 `json:"RequestedAmount"`
	AmountInvested  float64 `json:"AmountInvested"`
}
