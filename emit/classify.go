package emit

import "github.com/lunixbochs/rvtcg/riscv"

func isArith(op riscv.Op) bool {
	switch op {
	case riscv.OpLUIInst, riscv.OpAUIPCInst,
		riscv.OpADDI, riscv.OpSLTI, riscv.OpSLTIU, riscv.OpXORI, riscv.OpORI, riscv.OpANDI,
		riscv.OpSLLI, riscv.OpSRLI, riscv.OpSRAI, riscv.OpADDIW, riscv.OpSLLIW, riscv.OpSRLIW, riscv.OpSRAIW,
		riscv.OpADD, riscv.OpSUB, riscv.OpSLL, riscv.OpSLT, riscv.OpSLTU, riscv.OpXOR, riscv.OpSRL, riscv.OpSRA,
		riscv.OpOR, riscv.OpAND, riscv.OpADDW, riscv.OpSUBW, riscv.OpSLLW, riscv.OpSRLW, riscv.OpSRAW,
		riscv.OpMUL, riscv.OpMULH, riscv.OpMULHSU, riscv.OpMULHU,
		riscv.OpDIV, riscv.OpDIVU, riscv.OpREM, riscv.OpREMU,
		riscv.OpMULW, riscv.OpDIVW, riscv.OpDIVUW, riscv.OpREMW, riscv.OpREMUW:
		return true
	}
	return false
}

func isBranch(op riscv.Op) bool {
	switch op {
	case riscv.OpBEQ, riscv.OpBNE, riscv.OpBLT, riscv.OpBGE, riscv.OpBLTU, riscv.OpBGEU:
		return true
	}
	return false
}

func isJump(op riscv.Op) bool {
	return op == riscv.OpJAL_ || op == riscv.OpJALR_
}

func isLoadStore(op riscv.Op) bool {
	switch op {
	case riscv.OpLB, riscv.OpLH, riscv.OpLW, riscv.OpLD, riscv.OpLBU, riscv.OpLHU, riscv.OpLWU,
		riscv.OpSB, riscv.OpSH, riscv.OpSW, riscv.OpSD:
		return true
	}
	return false
}

func isFPLoadStore(op riscv.Op) bool {
	switch op {
	case riscv.OpFLW, riscv.OpFLD, riscv.OpFSW, riscv.OpFSD:
		return true
	}
	return false
}

func isAtomic(op riscv.Op) bool {
	switch op {
	case riscv.OpLR_W, riscv.OpLR_D, riscv.OpSC_W, riscv.OpSC_D,
		riscv.OpAMOSWAP_W, riscv.OpAMOADD_W, riscv.OpAMOXOR_W, riscv.OpAMOAND_W, riscv.OpAMOOR_W,
		riscv.OpAMOMIN_W, riscv.OpAMOMAX_W, riscv.OpAMOMINU_W, riscv.OpAMOMAXU_W,
		riscv.OpAMOSWAP_D, riscv.OpAMOADD_D, riscv.OpAMOXOR_D, riscv.OpAMOAND_D, riscv.OpAMOOR_D,
		riscv.OpAMOMIN_D, riscv.OpAMOMAX_D, riscv.OpAMOMINU_D, riscv.OpAMOMAXU_D:
		return true
	}
	return false
}

func isFP(op riscv.Op) bool {
	switch op {
	case riscv.OpFADD, riscv.OpFSUB, riscv.OpFMUL, riscv.OpFDIV, riscv.OpFSQRT,
		riscv.OpFSGNJ, riscv.OpFSGNJN, riscv.OpFSGNJX, riscv.OpFMIN, riscv.OpFMAX,
		riscv.OpFEQ, riscv.OpFLT, riscv.OpFLE, riscv.OpFCLASS,
		riscv.OpFCVT_W_F, riscv.OpFCVT_WU_F, riscv.OpFCVT_L_F, riscv.OpFCVT_LU_F,
		riscv.OpFCVT_F_W, riscv.OpFCVT_F_WU, riscv.OpFCVT_F_L, riscv.OpFCVT_F_LU,
		riscv.OpFCVT_S_D, riscv.OpFCVT_D_S,
		riscv.OpFMV_X_W, riscv.OpFMV_W_X, riscv.OpFMV_X_D, riscv.OpFMV_D_X,
		riscv.OpFMADD, riscv.OpFMSUB, riscv.OpFNMSUB, riscv.OpFNMADD:
		return true
	}
	return false
}

func isSystem(op riscv.Op) bool {
	switch op {
	case riscv.OpFENCE, riscv.OpFENCE_I, riscv.OpECALL, riscv.OpEBREAK,
		riscv.OpCSRRW, riscv.OpCSRRS, riscv.OpCSRRC, riscv.OpCSRRWI, riscv.OpCSRRSI, riscv.OpCSRRCI,
		riscv.OpSRET, riscv.OpMRET, riscv.OpWFI, riscv.OpSFENCE_VMA:
		return true
	}
	return false
}
