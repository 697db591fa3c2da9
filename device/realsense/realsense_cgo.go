//go:build withrealsense
// +build withrealsense

/*
DESCRIPTION
  realsense_cgo.go binds the parts of the librealsense2 C API used to enumerate
  sensors and stream depth and colour frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package realsense

/*
#cgo linux darwin LDFLAGS: -L/usr/local/lib/ -lrealsense2
#cgo CPPFLAGS: -I/usr/local/include
#include <librealsense2/rs.h>
#include <librealsense2/h/rs_pipeline.h>
#include <librealsense2/h/rs_config.h>
#include <librealsense2/h/rs_frame.h>

static rs2_context* new_context(rs2_error** e) {
	return rs2_create_context(RS2_API_VERSION, e);
}
*/
import "C"

import (
	"encoding/binary"
	"image"
	"time"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/ausocean/hsvtrack/device"
)

// handle owns every librealsense2 object created for one device. Fields are
// nil until created; close deletes whatever exists.
type handle struct {
	ctx     *C.rs2_context
	list    *C.rs2_device_list
	dev     *C.rs2_device
	pipe    *C.rs2_pipeline
	cfg     *C.rs2_config
	profile *C.rs2_pipeline_profile
}

// errorFrom converts and frees a librealsense2 error.
func errorFrom(e *C.rs2_error) error {
	defer C.rs2_free_error(e)
	return errors.Errorf(
		"%s(%s): %s",
		C.GoString(C.rs2_get_failed_function(e)),
		C.GoString(C.rs2_get_failed_args(e)),
		C.GoString(C.rs2_get_error_message(e)),
	)
}

// openHandle creates a context and connects to the first device. If no device
// is attached the handle has no device and reports no sensors.
func openHandle() (*handle, error) {
	var e *C.rs2_error
	h := &handle{}

	h.ctx = C.new_context(&e)
	if e != nil {
		return nil, errors.Wrap(errorFrom(e), "could not create context")
	}

	h.list = C.rs2_query_devices(h.ctx, &e)
	if e != nil {
		err := errorFrom(e)
		h.close()
		return nil, errors.Wrap(err, "could not query devices")
	}

	n := C.rs2_get_device_count(h.list, &e)
	if e != nil {
		err := errorFrom(e)
		h.close()
		return nil, errors.Wrap(err, "could not count devices")
	}
	if n == 0 {
		return h, nil
	}

	h.dev = C.rs2_create_device(h.list, 0, &e)
	if e != nil {
		err := errorFrom(e)
		h.close()
		return nil, errors.Wrap(err, "could not create device")
	}
	return h, nil
}

func (h *handle) sensors() ([]string, error) {
	if h.dev == nil {
		return []string{}, nil
	}

	var e *C.rs2_error
	list := C.rs2_query_sensors(h.dev, &e)
	if e != nil {
		return nil, errors.Wrap(errorFrom(e), "could not query sensors")
	}
	defer C.rs2_delete_sensor_list(list)

	n := C.rs2_get_sensors_count(list, &e)
	if e != nil {
		return nil, errors.Wrap(errorFrom(e), "could not count sensors")
	}

	names := make([]string, 0, int(n))
	for i := C.int(0); i < n; i++ {
		s := C.rs2_create_sensor(list, i, &e)
		if e != nil {
			return nil, errors.Wrap(errorFrom(e), "could not create sensor")
		}
		name := C.rs2_get_sensor_info(s, C.rs2_camera_info(C.RS2_CAMERA_INFO_NAME), &e)
		if e != nil {
			C.rs2_delete_sensor(s)
			return nil, errors.Wrap(errorFrom(e), "could not get sensor name")
		}
		names = append(names, C.GoString(name))
		C.rs2_delete_sensor(s)
	}
	return names, nil
}

func (h *handle) productLine() (string, error) {
	if h.dev == nil {
		return "", errors.New("no device attached")
	}

	var e *C.rs2_error
	info := C.rs2_camera_info(C.RS2_CAMERA_INFO_PRODUCT_LINE)
	ok := C.rs2_supports_device_info(h.dev, info, &e)
	if e != nil {
		return "", errors.Wrap(errorFrom(e), "could not query product line support")
	}
	if ok == 0 {
		return "", nil
	}
	pl := C.rs2_get_device_info(h.dev, info, &e)
	if e != nil {
		return "", errors.Wrap(errorFrom(e), "could not get product line")
	}
	return C.GoString(pl), nil
}

// start enables a Z16 depth stream and an RGB8 colour stream. RGB8 is
// requested rather than BGR8 so colour frames copy straight into image.RGBA.
func (h *handle) start(s streams) error {
	if h.dev == nil {
		return errors.New("no device attached")
	}

	var e *C.rs2_error
	h.pipe = C.rs2_create_pipeline(h.ctx, &e)
	if e != nil {
		return errors.Wrap(errorFrom(e), "could not create pipeline")
	}

	h.cfg = C.rs2_create_config(&e)
	if e != nil {
		return errors.Wrap(errorFrom(e), "could not create config")
	}

	C.rs2_config_enable_stream(
		h.cfg,
		C.rs2_stream(C.RS2_STREAM_DEPTH),
		-1,
		C.int(s.depthWidth),
		C.int(s.depthHeight),
		C.rs2_format(C.RS2_FORMAT_Z16),
		C.int(s.fps),
		&e,
	)
	if e != nil {
		return errors.Wrap(errorFrom(e), "could not enable depth stream")
	}

	C.rs2_config_enable_stream(
		h.cfg,
		C.rs2_stream(C.RS2_STREAM_COLOR),
		-1,
		C.int(s.colorWidth),
		C.int(s.colorHeight),
		C.rs2_format(C.RS2_FORMAT_RGB8),
		C.int(s.fps),
		&e,
	)
	if e != nil {
		return errors.Wrap(errorFrom(e), "could not enable colour stream")
	}

	h.profile = C.rs2_pipeline_start_with_config(h.pipe, h.cfg, &e)
	if e != nil {
		return errors.Wrap(errorFrom(e), "could not start pipeline")
	}
	return nil
}

func (h *handle) waitForPair(timeout time.Duration) (device.Pair, bool, error) {
	var (
		e      *C.rs2_error
		frames *C.rs2_frame
	)
	got := C.rs2_pipeline_try_wait_for_frames(h.pipe, &frames, C.uint(timeout.Milliseconds()), &e)
	if e != nil {
		return device.Pair{}, false, errors.Wrap(errorFrom(e), "could not wait for frames")
	}
	if got == 0 {
		return device.Pair{}, false, nil
	}
	defer C.rs2_release_frame(frames)

	n := C.rs2_embedded_frames_count(frames, &e)
	if e != nil {
		return device.Pair{}, false, errors.Wrap(errorFrom(e), "could not count frames")
	}

	p := device.Pair{Time: time.Now()}
	for i := C.int(0); i < n; i++ {
		var e *C.rs2_error
		f := C.rs2_extract_frame(frames, i, &e)
		if e != nil {
			return device.Pair{}, false, errors.Wrap(errorFrom(e), "could not extract frame")
		}
		err := copyFrame(f, &p)
		C.rs2_release_frame(f)
		if err != nil {
			return device.Pair{}, false, err
		}
	}
	return p, p.Complete(), nil
}

// copyFrame copies f into the depth or colour image of p by its kind.
func copyFrame(f *C.rs2_frame, p *device.Pair) error {
	kind, err := classify(
		func() (bool, error) { return extendsTo(f, C.rs2_extension(C.RS2_EXTENSION_DEPTH_FRAME)) },
		func() (bool, error) { return extendsTo(f, C.rs2_extension(C.RS2_EXTENSION_VIDEO_FRAME)) },
	)
	if err != nil {
		return err
	}
	switch kind {
	case kindDepth:
		p.Depth, err = copyDepth(f)
	case kindColor:
		p.Color, err = copyColor(f)
	}
	return err
}

// extendsTo reports whether f can be extended to ext.
func extendsTo(f *C.rs2_frame, ext C.rs2_extension) (bool, error) {
	var e *C.rs2_error
	ok := C.rs2_is_frame_extendable_to(f, ext, &e)
	if e != nil {
		return false, errorFrom(e)
	}
	return ok != 0, nil
}

// frameData returns a copy of the frame's buffer with its geometry.
func frameData(f *C.rs2_frame) (buf []byte, w, h, stride int, err error) {
	var e *C.rs2_error
	w = int(C.rs2_get_frame_width(f, &e))
	if e != nil {
		return nil, 0, 0, 0, errors.Wrap(errorFrom(e), "could not get frame width")
	}
	h = int(C.rs2_get_frame_height(f, &e))
	if e != nil {
		return nil, 0, 0, 0, errors.Wrap(errorFrom(e), "could not get frame height")
	}
	stride = int(C.rs2_get_frame_stride_in_bytes(f, &e))
	if e != nil {
		return nil, 0, 0, 0, errors.Wrap(errorFrom(e), "could not get frame stride")
	}
	data := C.rs2_get_frame_data(f, &e)
	if e != nil {
		return nil, 0, 0, 0, errors.Wrap(errorFrom(e), "could not get frame data")
	}
	return C.GoBytes(unsafe.Pointer(data), C.int(stride*h)), w, h, stride, nil
}

// copyDepth copies a little endian Z16 frame into a Gray16, which stores
// samples big endian.
func copyDepth(f *C.rs2_frame) (*image.Gray16, error) {
	buf, w, h, stride, err := frameData(f)
	if err != nil {
		return nil, err
	}
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := buf[y*stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			binary.BigEndian.PutUint16(dst[2*x:], binary.LittleEndian.Uint16(row[2*x:]))
		}
	}
	return img, nil
}

// copyColor copies an RGB8 frame into an opaque RGBA.
func copyColor(f *C.rs2_frame) (*image.RGBA, error) {
	buf, w, h, stride, err := frameData(f)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := buf[y*stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			dst[4*x] = row[3*x]
			dst[4*x+1] = row[3*x+1]
			dst[4*x+2] = row[3*x+2]
			dst[4*x+3] = 0xff
		}
	}
	return img, nil
}

// close stops the pipeline if it was started and deletes every object. An
// error stopping the pipeline is returned after everything is deleted.
func (h *handle) close() error {
	var err error
	if h.pipe != nil && h.profile != nil {
		var e *C.rs2_error
		C.rs2_pipeline_stop(h.pipe, &e)
		if e != nil {
			err = errors.Wrap(errorFrom(e), "could not stop pipeline")
		}
	}
	if h.profile != nil {
		C.rs2_delete_pipeline_profile(h.profile)
		h.profile = nil
	}
	if h.cfg != nil {
		C.rs2_delete_config(h.cfg)
		h.cfg = nil
	}
	if h.pipe != nil {
		C.rs2_delete_pipeline(h.pipe)
		h.pipe = nil
	}
	if h.dev != nil {
		C.rs2_delete_device(h.dev)
		h.dev = nil
	}
	if h.list != nil {
		C.rs2_delete_device_list(h.list)
		h.list = nil
	}
	if h.ctx != nil {
		C.rs2_delete_context(h.ctx)
		h.ctx = nil
	}
	return err
}
