// Package scenepack loads scene descriptions.
//
// A scene file is JSON.  It is decoded with protojson into a
// google.protobuf.Struct and then walked by hand:
//
//	{
//	  "name": "two-cubes",
//	  "materials": {
//	    "red":   {"lambertian": {"albedo": [0.7, 0.1, 0.1]}},
//	    "steel": {"metal": {"albedo": [0.8, 0.8, 0.8], "fuzz": 0.1}},
//	    "glass": {"dielectric": {"index": 1.5}},
//	    "lamp":  {"emitter": {"radiance": [4, 4, 4]}}
//	  },
//	  "elements": [
//	    {"box": {"lo": [0, 0, 0], "hi": [1, 1, 1]}, "material": "red", "rotate_y": 45},
//	    {"sphere": {"center": [0, -1000, 0], "radius": 1000}, "material": "steel"},
//	    {"group": {"elements": [...]}, "rotate_y": [30, 15]}
//	  ],
//	  "camera": {"look_from": [13, 2, 3], "look_at": [0, 0, 0], "vfov": 20}
//	}
//
// rotate_y is either a single angle in degrees or a list of them, applied
// innermost first.
package scenepack

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"row-major/boxtracer/camera"
	"row-major/boxtracer/geometry"
	"row-major/boxtracer/material"
	"row-major/boxtracer/scene"
	"row-major/boxtracer/vmath/vec3"

	"github.com/golang/glog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const builtinPrefix = "builtin:"

// Load returns the scene called name.  Names starting with "builtin:" refer
// to scenes compiled into the binary, which are generated from seed; anything
// else is a path to a scene file.
func Load(name string, seed int64) (*scene.Scene, error) {
	if strings.HasPrefix(name, builtinPrefix) {
		switch strings.TrimPrefix(name, builtinPrefix) {
		case "cube-field":
			return CubeField(rand.New(rand.NewSource(seed))), nil
		default:
			return nil, fmt.Errorf("unknown builtin scene %q", name)
		}
	}
	return LoadScene(name)
}

func LoadScene(fileName string) (*scene.Scene, error) {
	fileBytes, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("while opening scenepack: %w", err)
	}

	s, err := ParseScene(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("while parsing scenepack %s: %w", fileName, err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	}
	return s, nil
}

func ParseScene(data []byte) (*scene.Scene, error) {
	root := &structpb.Struct{}
	if err := protojson.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("while unmarshaling scene: %w", err)
	}
	fields := root.GetFields()

	realScene := &scene.Scene{
		Name: fields["name"].GetStringValue(),
	}

	materials := map[string]material.Material{}
	for name, m := range fields["materials"].GetStructValue().GetFields() {
		realMaterial, err := convertMaterial(m.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("while loading material %q: %w", name, err)
		}
		materials[name] = realMaterial
	}

	elements, err := convertElements(fields["elements"].GetListValue(), materials)
	if err != nil {
		return nil, err
	}
	for _, e := range elements {
		realScene.Add(e)
	}

	if c := fields["camera"].GetStructValue(); c != nil {
		realCamera, err := convertCamera(c)
		if err != nil {
			return nil, fmt.Errorf("while loading camera: %w", err)
		}
		realScene.AddCamera(realCamera)
	}

	if glog.V(1) {
		glog.Infof("Loaded scene %q: %d materials, %d top-level elements, %d cameras",
			realScene.Name, len(materials), len(realScene.Elements), len(realScene.Cameras))
	}

	return realScene, nil
}

func convertMaterial(in *structpb.Struct) (material.Material, error) {
	if in == nil {
		return nil, fmt.Errorf("material must be an object")
	}
	fields := in.GetFields()

	switch {
	case fields["lambertian"] != nil:
		m := fields["lambertian"].GetStructValue()
		albedo, err := getVec3(m, "albedo", vec3.T{0.5, 0.5, 0.5})
		if err != nil {
			return nil, err
		}
		return &material.Lambertian{Albedo: albedo}, nil

	case fields["metal"] != nil:
		m := fields["metal"].GetStructValue()
		albedo, err := getVec3(m, "albedo", vec3.T{0.8, 0.8, 0.8})
		if err != nil {
			return nil, err
		}
		fuzz := getNumber(m, "fuzz", 0)
		if fuzz < 0 || fuzz > 1 {
			return nil, fmt.Errorf("metal fuzz %v outside [0, 1]", fuzz)
		}
		return &material.Metal{Albedo: albedo, Fuzz: fuzz}, nil

	case fields["dielectric"] != nil:
		index := getNumber(fields["dielectric"].GetStructValue(), "index", 1.5)
		if index <= 0 {
			return nil, fmt.Errorf("dielectric index %v must be positive", index)
		}
		return &material.Dielectric{Index: index}, nil

	case fields["emitter"] != nil:
		radiance, err := getVec3(fields["emitter"].GetStructValue(), "radiance", vec3.T{1, 1, 1})
		if err != nil {
			return nil, err
		}
		return &material.Emitter{Radiance: radiance}, nil
	}

	return nil, fmt.Errorf("unknown material kind")
}

func convertElements(in *structpb.ListValue, materials map[string]material.Material) ([]geometry.Intersectable, error) {
	elements := []geometry.Intersectable{}
	for i, v := range in.GetValues() {
		e, err := convertElement(v.GetStructValue(), materials)
		if err != nil {
			return nil, fmt.Errorf("while loading element %d: %w", i, err)
		}
		elements = append(elements, e)
	}
	return elements, nil
}

func convertElement(in *structpb.Struct, materials map[string]material.Material) (geometry.Intersectable, error) {
	if in == nil {
		return nil, fmt.Errorf("element must be an object")
	}
	fields := in.GetFields()

	lookupMaterial := func() (material.Material, error) {
		name := fields["material"].GetStringValue()
		m, ok := materials[name]
		if !ok {
			return nil, fmt.Errorf("unknown material %q", name)
		}
		return m, nil
	}

	var result geometry.Intersectable
	switch {
	case fields["box"] != nil:
		b := fields["box"].GetStructValue()
		lo, err := getVec3(b, "lo", vec3.T{})
		if err != nil {
			return nil, err
		}
		hi, err := getVec3(b, "hi", vec3.T{})
		if err != nil {
			return nil, err
		}
		m, err := lookupMaterial()
		if err != nil {
			return nil, err
		}
		box := geometry.NewBox(lo, hi, m)
		if err := box.Validate(); err != nil {
			return nil, fmt.Errorf("while validating box: %w", err)
		}
		result = box

	case fields["sphere"] != nil:
		sp := fields["sphere"].GetStructValue()
		center, err := getVec3(sp, "center", vec3.T{})
		if err != nil {
			return nil, err
		}
		radius := getNumber(sp, "radius", 1)
		if radius <= 0 {
			return nil, fmt.Errorf("sphere radius %v must be positive", radius)
		}
		m, err := lookupMaterial()
		if err != nil {
			return nil, err
		}
		result = &geometry.Sphere{Center: center, Radius: radius, Material: m}

	case fields["group"] != nil:
		children, err := convertElements(fields["group"].GetStructValue().GetFields()["elements"].GetListValue(), materials)
		if err != nil {
			return nil, fmt.Errorf("while loading group: %w", err)
		}
		result = &scene.Scene{Elements: children}

	default:
		return nil, fmt.Errorf("element has no box, sphere, or group")
	}

	angles, err := getAngles(in, "rotate_y")
	if err != nil {
		return nil, err
	}
	for _, deg := range angles {
		result = geometry.RotateY(result, deg)
	}

	return result, nil
}

func convertCamera(in *structpb.Struct) (camera.Camera, error) {
	lookFrom, err := getVec3(in, "look_from", vec3.T{0, 0, 0})
	if err != nil {
		return nil, err
	}
	lookAt, err := getVec3(in, "look_at", vec3.T{0, 0, -1})
	if err != nil {
		return nil, err
	}
	// "up" is accepted as an older spelling of "vup".
	up, err := getVec3(in, "up", vec3.T{0, 1, 0})
	if err != nil {
		return nil, err
	}
	up, err = getVec3(in, "vup", up)
	if err != nil {
		return nil, err
	}

	focusDist := getNumber(in, "focus_dist", vec3.SubVV(lookFrom, lookAt).Norm())
	if focusDist <= 0 {
		return nil, fmt.Errorf("focus distance %v must be positive", focusDist)
	}

	return camera.NewThinLensCamera(
		lookFrom,
		lookAt,
		up,
		getNumber(in, "vfov", 90),
		getNumber(in, "aspect", 16.0/9.0),
		getNumber(in, "defocus_angle", 0),
		focusDist,
	), nil
}

func getNumber(in *structpb.Struct, key string, def float64) float64 {
	v, ok := in.GetFields()[key]
	if !ok {
		return def
	}
	return v.GetNumberValue()
}

func getVec3(in *structpb.Struct, key string, def vec3.T) (vec3.T, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return def, nil
	}
	list := v.GetListValue().GetValues()
	if len(list) != 3 {
		return vec3.T{}, fmt.Errorf("%s must be a list of 3 numbers, got %v", key, v.AsInterface())
	}
	return vec3.T{list[0].GetNumberValue(), list[1].GetNumberValue(), list[2].GetNumberValue()}, nil
}

func getAngles(in *structpb.Struct, key string) ([]float64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return nil, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return []float64{k.NumberValue}, nil
	case *structpb.Value_ListValue:
		angles := []float64{}
		for _, a := range k.ListValue.GetValues() {
			angles = append(angles, a.GetNumberValue())
		}
		return angles, nil
	}
	return nil, fmt.Errorf("%s must be a number or a list of numbers", key)
}
