package entries

const (
	actionDefine         = "Create NFT"
	actionMint           = "Mint NFT"
	actionWithdrawal     = "Withdraw NFT"
	actionClaim          = "Claim NFT"
	actionUpdate         = "Update NFT information"
	actionTransfer       = "Transfer NFT"
	actionTransferUpdate = "Transfer and update NFT information"
)
