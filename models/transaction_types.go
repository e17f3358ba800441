package models

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeBetWin      TransactionType = "bet_win"
	TransactionTypeBetLoss     TransactionType = "bet_loss"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeAdminGrant  TransactionType = "admin_grant"
	TransactionTypeAdminReset  TransactionType = "admin_reset"
)
