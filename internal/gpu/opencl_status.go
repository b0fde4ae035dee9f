package gpu

import "fmt"

// StatusError is a non-success status code returned by an OpenCL call.
type StatusError struct {
	Call string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Call, StatusName(e.Code), e.Code)
}

// platformNotFound is CL_PLATFORM_NOT_FOUND_KHR, returned by the ICD loader
// when no vendor implementation is installed.
const platformNotFound = -1001

var statusNames = map[int]string{
	0:                "CL_SUCCESS",
	-1:               "CL_DEVICE_NOT_FOUND",
	-2:               "CL_DEVICE_NOT_AVAILABLE",
	-3:               "CL_COMPILER_NOT_AVAILABLE",
	-4:               "CL_MEM_OBJECT_ALLOCATION_FAILURE",
	-5:               "CL_OUT_OF_RESOURCES",
	-6:               "CL_OUT_OF_HOST_MEMORY",
	-7:               "CL_PROFILING_INFO_NOT_AVAILABLE",
	-8:               "CL_MEM_COPY_OVERLAP",
	-11:              "CL_BUILD_PROGRAM_FAILURE",
	-12:              "CL_MAP_FAILURE",
	-30:              "CL_INVALID_VALUE",
	-31:              "CL_INVALID_DEVICE_TYPE",
	-32:              "CL_INVALID_PLATFORM",
	-33:              "CL_INVALID_DEVICE",
	-34:              "CL_INVALID_CONTEXT",
	-35:              "CL_INVALID_QUEUE_PROPERTIES",
	-36:              "CL_INVALID_COMMAND_QUEUE",
	-38:              "CL_INVALID_MEM_OBJECT",
	-42:              "CL_INVALID_BINARY",
	-43:              "CL_INVALID_BUILD_OPTIONS",
	-44:              "CL_INVALID_PROGRAM",
	-45:              "CL_INVALID_PROGRAM_EXECUTABLE",
	-46:              "CL_INVALID_KERNEL_NAME",
	-47:              "CL_INVALID_KERNEL_DEFINITION",
	-48:              "CL_INVALID_KERNEL",
	-49:              "CL_INVALID_ARG_INDEX",
	-50:              "CL_INVALID_ARG_VALUE",
	-51:              "CL_INVALID_ARG_SIZE",
	-52:              "CL_INVALID_KERNEL_ARGS",
	-53:              "CL_INVALID_WORK_DIMENSION",
	-54:              "CL_INVALID_WORK_GROUP_SIZE",
	-55:              "CL_INVALID_WORK_ITEM_SIZE",
	-56:              "CL_INVALID_GLOBAL_OFFSET",
	-61:              "CL_INVALID_BUFFER_SIZE",
	-63:              "CL_INVALID_GLOBAL_WORK_SIZE",
	platformNotFound: "CL_PLATFORM_NOT_FOUND_KHR",
}

// StatusName returns the symbolic name of an OpenCL status code.
func StatusName(code int) string {
	if name, ok := statusNames[code]; ok {
		return name
	}
	return "CL_UNKNOWN_ERROR"
}
