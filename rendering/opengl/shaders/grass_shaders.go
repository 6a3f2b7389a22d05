package shaders

// Program names understood by the embedded provider
const (
	GrassProgram  = "grass"
	GroundProgram = "ground"
	HUDProgram    = "hud"
)

// SSBO binding points shared by the compute shader and the host code
const (
	FrontBladesBinding = 1
	BackBladesBinding  = 2
	DrawCommandBinding = 3
)

var builtin = map[string]string{
	"grass.comp.glsl":  grassComputeShader,
	"grass.vert.glsl":  grassVertexShader,
	"grass.tesc.glsl":  grassTessControlShader,
	"grass.tese.glsl":  grassTessEvalShader,
	"grass.frag.glsl":  grassFragmentShader,
	"ground.vert.glsl": groundVertexShader,
	"ground.frag.glsl": groundFragmentShader,
	"hud.vert.glsl":    hudVertexShader,
	"hud.frag.glsl":    hudFragmentShader,
}

// Blade physics: one work group per blade. Reads the front buffer, writes the
// back buffer. Must stay in step with physics.StepBlade.
const grassComputeShader = `#version 430 core

layout(local_size_x = 1, local_size_y = 1, local_size_z = 1) in;

struct Blade {
    vec4 v0; // xyz: position, w: orientation
    vec4 v1; // xyz: tip, w: height
    vec4 v2; // xyz: guide, w: width
    vec4 up; // xyz: up vector, w: stiffness
};

layout(std430, binding = 1) readonly buffer FrontBlades {
    Blade inBlades[];
};

layout(std430, binding = 2) writeonly buffer BackBlades {
    Blade outBlades[];
};

layout(std430, binding = 3) buffer DrawCommand {
    uint vertexCount;
    uint instanceCount;
    uint firstVertex;
    uint baseInstance;
} command;

uniform float current_time;
uniform float delta_time;
uniform float wind_magnitude;
uniform float wind_wave_length;
uniform float wind_wave_period;
uniform vec2 wind_direction;
uniform float recovery_rate;
uniform float min_recovery;
uniform uint blade_count;
uniform uint patch_vertices;
uniform bool write_command;

const float PI = 3.14159265358979;
const float MIN_WIND_SCALE = 1e-4;

float guardScale(float v) {
    if (abs(v) < MIN_WIND_SCALE) {
        return v < 0.0 ? -MIN_WIND_SCALE : MIN_WIND_SCALE;
    }
    return v;
}

void main() {
    uint idx = gl_WorkGroupID.y * gl_NumWorkGroups.x + gl_WorkGroupID.x;
    if (idx >= blade_count) {
        return;
    }
    if (write_command && idx == 0u) {
        command.vertexCount = blade_count * patch_vertices;
        command.instanceCount = 1u;
        command.firstVertex = 0u;
        command.baseInstance = 0u;
    }

    Blade b = inBlades[idx];
    vec3 p0 = b.v0.xyz;
    vec3 up = length(b.up.xyz) > 0.0 ? normalize(b.up.xyz) : vec3(0.0, 1.0, 0.0);
    float h = b.v1.w;
    float s = b.up.w;
    float dt = max(delta_time, 0.0);

    vec3 rest = p0 + up * h;
    vec3 d = b.v1.xyz - rest;

    // traveling wave
    vec3 dir = vec3(wind_direction.x, 0.0, wind_direction.y);
    float phase = 2.0 * PI * (current_time / guardScale(wind_wave_period)
        + dot(p0.xz, wind_direction) / guardScale(wind_wave_length));
    float amount = wind_magnitude * sin(phase);
    vec3 facing = vec3(cos(b.v0.w), 0.0, sin(b.v0.w));
    float align = 1.0 - abs(dot(dir, facing)) * 0.5;
    float heightRatio = clamp(dot(b.v1.xyz - p0, up) / h, 0.0, 1.0);
    vec3 wind = dir * amount * align * heightRatio;

    // spring back toward the rest pose, stiffer blades recover faster and bend less
    d = d * exp(-recovery_rate * (max(min_recovery, 0.0) + s) * dt) + wind * dt * (1.0 - 0.75 * s);

    vec3 tip = rest + d;
    tip -= up * min(dot(up, tip - p0), 0.0);

    vec3 rel = tip - p0;
    float lproj = length(rel - up * dot(rel, up));
    float ratio = lproj / h;
    vec3 guide = p0 + up * h * max(1.0 - ratio, 0.05 * max(ratio, 1.0));

    float l0 = distance(tip, p0);
    float l1 = distance(guide, p0) + distance(tip, guide);
    float l = (2.0 * l0 + l1) / 3.0;
    if (l > 0.0) {
        float r = h / l;
        vec3 g = p0 + r * (guide - p0);
        tip = g + r * (tip - guide);
        guide = g;
    }

    outBlades[idx].v0 = b.v0;
    outBlades[idx].v1 = vec4(tip, h);
    outBlades[idx].v2 = vec4(guide, b.v2.w);
    outBlades[idx].up = b.up;
}
`

const grassVertexShader = `#version 430 core

layout(location = 0) in vec4 v0;
layout(location = 1) in vec4 v1;
layout(location = 2) in vec4 v2;
layout(location = 3) in vec4 up;

out vec4 vs_v0;
out vec4 vs_v1;
out vec4 vs_v2;
out vec4 vs_up;

void main() {
    vs_v0 = v0;
    vs_v1 = v1;
    vs_v2 = v2;
    vs_up = up;
    gl_Position = vec4(v0.xyz, 1.0);
}
`

// Quad domain: u spans the blade width, v runs root to tip.
const grassTessControlShader = `#version 430 core

layout(vertices = 1) out;

in vec4 vs_v0[];
in vec4 vs_v1[];
in vec4 vs_v2[];
in vec4 vs_up[];

out vec4 tc_v0[];
out vec4 tc_v1[];
out vec4 tc_v2[];
out vec4 tc_up[];

uniform vec3 camera_position;
uniform float min_level;
uniform float max_level;
uniform float lod_distance;
uniform bool adaptive;

void main() {
    tc_v0[gl_InvocationID] = vs_v0[gl_InvocationID];
    tc_v1[gl_InvocationID] = vs_v1[gl_InvocationID];
    tc_v2[gl_InvocationID] = vs_v2[gl_InvocationID];
    tc_up[gl_InvocationID] = vs_up[gl_InvocationID];

    float level = max_level;
    if (adaptive) {
        float dist = distance(camera_position, vs_v0[0].xyz);
        level = mix(max_level, min_level, clamp(dist / max(lod_distance, 1e-4), 0.0, 1.0));
    }

    gl_TessLevelInner[0] = 1.0;
    gl_TessLevelInner[1] = level;
    gl_TessLevelOuter[0] = level;
    gl_TessLevelOuter[1] = 1.0;
    gl_TessLevelOuter[2] = level;
    gl_TessLevelOuter[3] = 1.0;
}
`

// Must stay in step with physics.EvaluateBlade.
const grassTessEvalShader = `#version 430 core

layout(quads, equal_spacing, ccw) in;

in vec4 tc_v0[];
in vec4 tc_v1[];
in vec4 tc_v2[];
in vec4 tc_up[];

out vec3 te_position;
out vec3 te_normal;
out float te_v;

uniform mat4 view;
uniform mat4 projection;

void main() {
    float u = gl_TessCoord.x;
    float v = gl_TessCoord.y;

    vec3 p0 = tc_v0[0].xyz;
    vec3 tip = tc_v1[0].xyz;
    vec3 guide = tc_v2[0].xyz;

    vec3 a = p0 + v * (guide - p0);
    vec3 b = guide + v * (tip - guide);
    vec3 c = a + v * (b - a);

    vec3 bitangent = vec3(cos(tc_v0[0].w), 0.0, sin(tc_v0[0].w));
    float halfWidth = tc_v2[0].w * (1.0 - v) * 0.5;
    vec3 position = mix(c - bitangent * halfWidth, c + bitangent * halfWidth, u);

    vec3 n = cross(b - a, bitangent);
    te_normal = length(n) > 1e-8 ? normalize(n) : vec3(0.0, 0.0, 1.0);
    te_position = position;
    te_v = v;

    gl_Position = projection * view * vec4(position, 1.0);
}
`

const grassFragmentShader = `#version 430 core

in vec3 te_position;
in vec3 te_normal;
in float te_v;

out vec4 outColor;

uniform vec3 light_direction;

void main() {
    vec3 rootColor = vec3(0.10, 0.32, 0.06);
    vec3 tipColor = vec3(0.48, 0.78, 0.26);
    vec3 albedo = mix(rootColor, tipColor, te_v);

    // blades are two sided
    float diffuse = abs(dot(normalize(te_normal), normalize(-light_direction)));
    outColor = vec4(albedo * (0.35 + 0.65 * diffuse), 1.0);
}
`

const groundVertexShader = `#version 430 core

layout(location = 0) in vec3 position;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 worldPos;

void main() {
    vec4 world = model * vec4(position, 1.0);
    worldPos = world.xyz;
    gl_Position = projection * view * world;
}
`

const groundFragmentShader = `#version 430 core

in vec3 worldPos;
out vec4 outColor;

uniform vec3 ground_color;

void main() {
    // faint checker so motion over the field is readable
    float checker = mod(floor(worldPos.x) + floor(worldPos.z), 2.0);
    outColor = vec4(ground_color * (0.9 + 0.1 * checker), 1.0);
}
`

const hudVertexShader = `#version 430 core

layout (location = 0) in vec2 position;
layout (location = 1) in vec4 color;

out vec4 fragColor;

uniform mat4 projection;

void main() {
    gl_Position = projection * vec4(position, 0.0, 1.0);
    fragColor = color;
}
`

const hudFragmentShader = `#version 430 core

in vec4 fragColor;
out vec4 outColor;

void main() {
    outColor = fragColor;
}
`
