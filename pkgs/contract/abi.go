package contract

// ChallengeTrackerABI is the simplified ABI of the challenge tracker
// contract, covering only the entry points this service calls.
const ChallengeTrackerABI = `[
	{
		"inputs": [],
		"name": "owner",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "isApprover",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "deadline",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
		"name": "getPoints",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "player", "type": "address"},
			{"internalType": "uint256", "name": "challengeId", "type": "uint256"}
		],
		"name": "getTokenForChallenge",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "challengeId", "type": "uint256"},
			{"internalType": "string", "name": "submissionId", "type": "string"},
			{"internalType": "address", "name": "player", "type": "address"},
			{"internalType": "string", "name": "nickname", "type": "string"},
			{"internalType": "uint256[]", "name": "points", "type": "uint256[]"}
		],
		"name": "approveSubmission",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "addApprover",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "removeApprover",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`
