package elasticity

// History field keys.
const (
	KeyTimeIter      = "TIME_ITER"
	KeyOuterIter     = "OUTER_ITER"
	KeyInnerIter     = "INNER_ITER"
	KeyPhysTime      = "PHYS_TIME"
	KeyLinSolIter    = "LINSOL_ITER"
	KeyRMSUTol       = "RMS_UTOL"
	KeyRMSRTol       = "RMS_RTOL"
	KeyRMSETol       = "RMS_ETOL"
	KeyRMSDispX      = "RMS_DISP_X"
	KeyRMSDispY      = "RMS_DISP_Y"
	KeyRMSDispZ      = "RMS_DISP_Z"
	KeyBGSDispX      = "BGS_DISP_X"
	KeyBGSDispY      = "BGS_DISP_Y"
	KeyBGSDispZ      = "BGS_DISP_Z"
	KeyVonMises      = "VMS"
	KeyLoadIncrement = "LOAD_INCREMENT"
	KeyLoadRamp      = "LOAD_RAMP"
)

// Volume field keys.
const (
	KeyCoordX         = "COORD-X"
	KeyCoordY         = "COORD-Y"
	KeyCoordZ         = "COORD-Z"
	KeyDisplacementX  = "DISPLACEMENT-X"
	KeyDisplacementY  = "DISPLACEMENT-Y"
	KeyDisplacementZ  = "DISPLACEMENT-Z"
	KeyVelocityX      = "VELOCITY-X"
	KeyVelocityY      = "VELOCITY-Y"
	KeyVelocityZ      = "VELOCITY-Z"
	KeyAccelerationX  = "ACCELERATION-X"
	KeyAccelerationY  = "ACCELERATION-Y"
	KeyAccelerationZ  = "ACCELERATION-Z"
	KeyStressXX       = "STRESS-XX"
	KeyStressYY       = "STRESS-YY"
	KeyStressXY       = "STRESS-XY"
	KeyStressZZ       = "STRESS-ZZ"
	KeyStressXZ       = "STRESS-XZ"
	KeyStressYZ       = "STRESS-YZ"
	KeyVonMisesStress = "VON_MISES_STRESS"
)

// Display groups.
const (
	GroupIter          = "ITER"
	GroupPhysTime      = "PHYS_TIME"
	GroupLinSolIter    = "LINSOL_ITER"
	GroupRMSRes        = "RMS_RES"
	GroupBGSRes        = "BGS_RES"
	GroupVonMises      = "VMS"
	GroupLoadIncrement = "LOAD_INCREMENT"
	GroupLoadRamp      = "LOAD_RAMP"
	GroupCoordinates   = "COORDINATES"
	GroupSolution      = "SOLUTION"
	GroupVelocity      = "VELOCITY"
	GroupAcceleration  = "ACCELERATION"
	GroupStress        = "STRESS"
)
