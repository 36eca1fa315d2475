package accel

import (
	"fmt"
	"runtime"
	"strconv"
)

// ThumbSize is the bounding box for generated thumbnails, in pixels.
const ThumbSize = 200

// scalePad builds a CPU-side scale+pad filter for the given flags.
func scalePad(flags string) string {
	scale := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", ThumbSize, ThumbSize)
	if flags != "" {
		scale += ":flags=" + flags
	}
	return fmt.Sprintf("%s,pad=%d:%d:(ow-iw)/2:(oh-ih)/2", scale, ThumbSize, ThumbSize)
}

// BuildThumbnailArgs maps a capability to the ffmpeg arguments that extract
// one frame at the 1-second mark, scale/pad it to ThumbSize and write a
// single JPEG. Pure function; unknown methods fall back to the CPU variant.
func BuildThumbnailArgs(input, output string, cap Capability) []string {
	args := []string{"-ss", "00:00:01.000"}

	switch cap.Method {
	case MethodCUDA, MethodNVENC:
		args = append(args,
			"-hwaccel", "cuda", "-hwaccel_output_format", "cuda",
			"-i", input,
			"-vf", fmt.Sprintf("scale_cuda=%d:%d:force_original_aspect_ratio=decrease", ThumbSize, ThumbSize),
			"-c:v", "mjpeg_nvenc", "-preset", "fast", "-qp", "23",
		)

	case MethodQSV:
		args = append(args,
			"-init_hw_device", "qsv=hw", "-filter_hw_device", "hw",
			"-i", input,
			"-vf", fmt.Sprintf("hwupload=extra_hw_frames=64,format=qsv,scale_qsv=%d:%d:mode=hq,hwdownload,format=nv12", ThumbSize, ThumbSize),
			"-c:v", "mjpeg_qsv", "-global_quality", "25",
		)

	case MethodVAAPI:
		args = append(args,
			"-init_hw_device", "vaapi=va:/dev/dri/renderD128", "-filter_hw_device", "va",
			"-hwaccel", "vaapi", "-hwaccel_output_format", "vaapi",
			"-i", input,
			"-vf", fmt.Sprintf("scale_vaapi=%d:%d:mode=hq,hwdownload,format=nv12", ThumbSize, ThumbSize),
			"-c:v", "mjpeg_vaapi", "-qp", "23",
		)

	case MethodAMF:
		args = append(args,
			"-i", input,
			"-vf", scalePad(""),
			"-c:v", "h264_amf", "-quality", "speed", "-rc", "cqp", "-qp", "23",
		)

	case MethodVideoToolbox:
		args = append(args,
			"-i", input,
			"-vf", scalePad(""),
			"-c:v", "h264_videotoolbox", "-q:v", "25",
		)

	case MethodDXVA2:
		args = append(args,
			"-hwaccel", "dxva2",
			"-i", input,
			"-vf", scalePad(""),
		)

	case MethodD3D11VA:
		args = append(args,
			"-hwaccel", "d3d11va",
			"-i", input,
			"-vf", scalePad(""),
		)

	case MethodOpenCL:
		args = append(args,
			"-init_hw_device", "opencl=ocl:0.0", "-filter_hw_device", "ocl",
			"-i", input,
			"-vf", fmt.Sprintf("hwupload,format=opencl,scale_opencl=%d:%d,hwdownload,format=yuv420p,pad=%d:%d:(ow-iw)/2:(oh-ih)/2", ThumbSize, ThumbSize, ThumbSize, ThumbSize),
		)

	default: // CPU
		flags := ""
		switch {
		case cap.CPU.AVX512:
			flags = "fast_bilinear"
		case cap.CPU.AVX2:
			flags = "bilinear"
		}
		threads := cap.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		args = append(args,
			"-i", input,
			"-vf", scalePad(flags),
			"-threads", strconv.Itoa(threads),
			"-preset", "ultrafast", "-q:v", "5",
		)
	}

	return append(args, commonTrailingArgs(output)...)
}

// FallbackArgs is the minimal, acceleration-free variant used for the single
// degraded retry after the optimized command fails.
func FallbackArgs(input, output string) []string {
	args := []string{
		"-i", input,
		"-ss", "00:00:01.000",
		"-vf", scalePad("fast_bilinear"),
		"-preset", "ultrafast", "-q:v", "5",
	}
	return append(args, commonTrailingArgs(output)...)
}

// commonTrailingArgs are shared by every variant: one output frame, no
// audio/subtitle streams, overwrite, minimal log verbosity.
func commonTrailingArgs(output string) []string {
	return []string{"-vframes", "1", "-an", "-sn", "-f", "image2", "-y", "-v", "error", output}
}

// testInput is a 1-second synthetic test pattern; candidate tests must be
// cheap and must not depend on any real media file existing.
const testInput = "testsrc2=duration=1:size=320x240:rate=1"

// benchmarkInput is a heavier pattern so timing differences between
// candidates are measurable.
const benchmarkInput = "testsrc2=duration=2:size=640x480:rate=30"

// testArgs returns the synthetic encode test for a candidate method.
func testArgs(method Method) []string {
	return synthArgs(method, testInput)
}

// benchmarkArgs returns the comparative timing run for a working method.
func benchmarkArgs(method Method) []string {
	return synthArgs(method, benchmarkInput)
}

func synthArgs(method Method, input string) []string {
	head := []string{"-f", "lavfi", "-i", input}
	tail := []string{"-f", "null", "-", "-v", "quiet"}

	switch method {
	case MethodCUDA:
		return join(head, []string{"-c:v", "h264_nvenc"}, tail)
	case MethodNVENC:
		return join(head, []string{"-c:v", "h264_nvenc", "-preset", "fast"}, tail)
	case MethodQSV:
		return join([]string{"-init_hw_device", "qsv=hw"}, head,
			[]string{"-vf", "hwupload=extra_hw_frames=64,format=qsv", "-c:v", "h264_qsv"}, tail)
	case MethodVAAPI:
		return join([]string{"-init_hw_device", "vaapi=va:/dev/dri/renderD128"}, head,
			[]string{"-vf", "format=nv12,hwupload", "-c:v", "h264_vaapi"}, tail)
	case MethodAMF:
		return join(head, []string{"-c:v", "h264_amf"}, tail)
	case MethodVideoToolbox:
		return join(head, []string{"-c:v", "h264_videotoolbox"}, tail)
	case MethodDXVA2:
		return join([]string{"-hwaccel", "dxva2"}, head, tail)
	case MethodD3D11VA:
		return join([]string{"-hwaccel", "d3d11va"}, head, tail)
	case MethodOpenCL:
		return join([]string{"-init_hw_device", "opencl=ocl:0.0", "-filter_hw_device", "ocl"}, head,
			[]string{"-vf", "hwupload,format=opencl,scale_opencl=320:240"}, tail)
	default:
		return join(head, []string{"-vf", "scale=320:240"}, tail)
	}
}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
