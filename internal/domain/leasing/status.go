package leasing

// requestTransitions reifies the request lifecycle: a request reaches a
// contract only through approval, and rejection is final.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:         {RequestApproved, RequestRejected},
	RequestApproved:        {RequestContractCreated},
	RequestRejected:        {},
	RequestContractCreated: {},
}

func CanTransitionRequest(current, target RequestStatus) bool {
	for _, next := range requestTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// contractTransitions: no transition out of terminated is defined. The
// active → pending edge exists because ordering equipment resets activation.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractDraft:      {ContractPending},
	ContractPending:    {ContractActive, ContractTerminated},
	ContractActive:     {ContractCompleted, ContractTerminated, ContractPending},
	ContractCompleted:  {},
	ContractTerminated: {},
}

func CanTransitionContract(current, target ContractStatus) bool {
	for _, next := range contractTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}
